package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"brecimport/internal/catalog"
	"brecimport/internal/recording"
)

// catalogTimeLayout matches how the catalog server stores timestamps.
const catalogTimeLayout = "2006-01-02 15:04:05.999999999-07:00"

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowWriter issues the session and part inserts against a db or tx.
type rowWriter struct {
	q      querier
	schema Schema
	now    func() time.Time
}

func (s *Store) writer(q querier) *rowWriter {
	return &rowWriter{q: q, schema: s.schema, now: time.Now}
}

func (w *rowWriter) ResolveOrCreateSession(ctx context.Context, c recording.Candidate) (catalog.SessionRef, error) {
	ctx = ensureContext(ctx)

	var id int64
	err := w.q.QueryRowContext(ctx, "SELECT id FROM "+tableHistories+" WHERE session_id = ? LIMIT 1", c.SessionKey).Scan(&id)
	switch {
	case err == nil:
		return catalog.SessionRef{ID: id, Key: c.SessionKey}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return catalog.SessionRef{}, fmt.Errorf("lookup session %s: %w", c.SessionKey, err)
	}

	now := formatTime(w.now())
	insert := newInsert(tableHistories).
		set("created_at", now).
		set("updated_at", now).
		set("room_id", c.RoomID).
		set("session_id", c.SessionKey).
		set("uname", c.DisplayName).
		set("title", c.Title).
		set("area_name", c.AreaParent).
		set("start_time", formatTime(c.StartTime)).
		set("end_time", formatTime(c.EndTime)).
		set("recording", 0).
		set("streaming", 0).
		set("upload", 1).
		set("publish", 0).
		set("code", -1).
		set("file_size", 0).
		setIf(w.schema.HasDanmaku, "danmaku_sent", 0).
		setIf(w.schema.HasDanmaku, "danmaku_count", 0).
		setIf(w.schema.HasDanmaku, "files_moved", 0).
		setIf(w.schema.HasDanmaku, "video_state", -1).
		setIf(w.schema.HasDanmaku, "video_state_desc", "")

	res, err := w.q.ExecContext(ctx, insert.query(), insert.args...)
	if err != nil {
		return catalog.SessionRef{}, fmt.Errorf("insert session %s: %w", c.SessionKey, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return catalog.SessionRef{}, fmt.Errorf("session %s id: %w", c.SessionKey, err)
	}
	return catalog.SessionRef{ID: id, Key: c.SessionKey}, nil
}

func (w *rowWriter) CreatePart(ctx context.Context, session catalog.SessionRef, c recording.Candidate) error {
	ctx = ensureContext(ctx)
	if session.ID <= 0 {
		return fmt.Errorf("create part %s: session %s has no id", c.ContainerPath, session.Key)
	}

	insert := newInsert(tableParts).
		set("created_at", formatTime(w.now())).
		set("history_id", session.ID).
		set("room_id", c.RoomID).
		set("session_id", session.Key).
		set("title", c.Title).
		set("live_title", c.Title).
		set("area_name", c.AreaParent).
		set("file_path", c.ContainerPath).
		set("file_name", c.FileName).
		set("file_size", c.SizeBytes).
		setIf(w.schema.HasDuration, "duration", 0).
		set("start_time", formatTime(c.StartTime)).
		set("end_time", formatTime(c.EndTime)).
		set("recording", 0).
		set("upload", 0).
		set("uploading", 0).
		set("file_delete", 0).
		set("file_moved", 0).
		set("page", 0).
		set("xcode_state", 0).
		setIf(w.schema.HasCID, "cid", 0)

	if _, err := w.q.ExecContext(ctx, insert.query(), insert.args...); err != nil {
		return fmt.Errorf("insert part %s: %w", c.ContainerPath, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(catalogTimeLayout)
}
