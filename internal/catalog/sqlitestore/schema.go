package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	tableRooms     = "record_rooms"
	tableHistories = "record_histories"
	tableParts     = "record_history_parts"
)

// Schema records which optional columns this catalog revision carries.
type Schema struct {
	// HasCID and HasDuration gate the newer part columns.
	HasCID      bool
	HasDuration bool
	// HasDanmaku gates the danmaku and video-state history columns.
	HasDanmaku bool
	// RoomsSoftDelete is set when rooms carry deleted_at.
	RoomsSoftDelete bool
}

func probeSchema(ctx context.Context, db *sql.DB) (Schema, error) {
	rooms, err := tableColumns(ctx, db, tableRooms)
	if err != nil {
		return Schema{}, err
	}
	histories, err := tableColumns(ctx, db, tableHistories)
	if err != nil {
		return Schema{}, err
	}
	parts, err := tableColumns(ctx, db, tableParts)
	if err != nil {
		return Schema{}, err
	}

	if err := requireColumns(tableRooms, rooms, "room_id"); err != nil {
		return Schema{}, err
	}
	if err := requireColumns(tableHistories, histories, "id", "session_id"); err != nil {
		return Schema{}, err
	}
	if err := requireColumns(tableParts, parts, "history_id", "file_path"); err != nil {
		return Schema{}, err
	}

	_, hasDanmaku := histories["danmaku_sent"]
	_, hasCID := parts["cid"]
	_, hasDuration := parts["duration"]
	_, softDelete := rooms["deleted_at"]
	return Schema{
		HasCID:          hasCID,
		HasDuration:     hasDuration,
		HasDanmaku:      hasDanmaku,
		RoomsSoftDelete: softDelete,
	}, nil
}

func requireColumns(table string, columns map[string]struct{}, names ...string) error {
	for _, name := range names {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("table %s is missing column %s", table, name)
		}
	}
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]struct{}, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]struct{})
	for rows.Next() {
		var (
			cid        int
			name       string
			columnType sql.NullString
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &columnType, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("inspect table %s: %w", table, err)
		}
		columns[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("catalog table %s not found", table)
	}
	return columns, nil
}
