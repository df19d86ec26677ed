package testsupport

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// CatalogOption customizes the fixture catalog schema.
type CatalogOption func(*catalogSchema)

type catalogSchema struct {
	legacy     bool
	softDelete bool
}

// LegacySchema drops the newer danmaku, cid, and duration columns.
func LegacySchema() CatalogOption {
	return func(s *catalogSchema) { s.legacy = true }
}

// SoftDeleteRooms adds a deleted_at column to record_rooms.
func SoftDeleteRooms() CatalogOption {
	return func(s *catalogSchema) { s.softDelete = true }
}

// NewCatalogDB creates a catalog database file in a temp directory and returns its path.
func NewCatalogDB(t testing.TB, opts ...CatalogOption) string {
	t.Helper()

	var schema catalogSchema
	for _, opt := range opts {
		opt(&schema)
	}

	path := filepath.Join(t.TempDir(), "data.db")
	db := openCatalog(t, path)
	defer db.Close()

	for _, stmt := range catalogDDL(schema) {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create catalog schema: %v\n%s", err, stmt)
		}
	}
	return path
}

// SeedRoom registers a room in the catalog.
func SeedRoom(t testing.TB, dbPath, roomID string) {
	t.Helper()

	db := openCatalog(t, dbPath)
	defer db.Close()
	if _, err := db.Exec(`INSERT INTO record_rooms (room_id, uname) VALUES (?, ?)`, roomID, "房间"+roomID); err != nil {
		t.Fatalf("seed room %s: %v", roomID, err)
	}
}

// SoftDeleteRoom marks a seeded room deleted. Requires SoftDeleteRooms.
func SoftDeleteRoom(t testing.TB, dbPath, roomID string) {
	t.Helper()

	db := openCatalog(t, dbPath)
	defer db.Close()
	if _, err := db.Exec(`UPDATE record_rooms SET deleted_at = CURRENT_TIMESTAMP WHERE room_id = ?`, roomID); err != nil {
		t.Fatalf("soft delete room %s: %v", roomID, err)
	}
}

// CountRows returns the number of rows in table matching the optional where clause.
func CountRows(t testing.TB, dbPath, table, where string, args ...any) int {
	t.Helper()

	db := openCatalog(t, dbPath)
	defer db.Close()

	query := "SELECT COUNT(*) FROM " + table
	if strings.TrimSpace(where) != "" {
		query += " WHERE " + where
	}
	var count int
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

func openCatalog(t testing.TB, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open catalog %s: %v", path, err)
	}
	return db
}

func catalogDDL(schema catalogSchema) []string {
	rooms := `CREATE TABLE record_rooms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME,
		updated_at DATETIME,
		room_id TEXT NOT NULL UNIQUE,
		uname TEXT,
		upload INTEGER DEFAULT 0`
	if schema.softDelete {
		rooms += `,
		deleted_at DATETIME`
	}
	rooms += `)`

	histories := `CREATE TABLE record_histories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME,
		updated_at DATETIME,
		room_id TEXT,
		session_id TEXT NOT NULL UNIQUE,
		uname TEXT,
		title TEXT,
		area_name TEXT,
		start_time DATETIME,
		end_time DATETIME,
		recording INTEGER,
		streaming INTEGER,
		upload INTEGER,
		publish INTEGER,
		code INTEGER,
		file_size INTEGER`
	if !schema.legacy {
		histories += `,
		danmaku_sent INTEGER,
		danmaku_count INTEGER,
		files_moved INTEGER,
		video_state INTEGER,
		video_state_desc TEXT`
	}
	histories += `)`

	parts := `CREATE TABLE record_history_parts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME,
		updated_at DATETIME,
		history_id INTEGER NOT NULL REFERENCES record_histories(id),
		room_id TEXT,
		session_id TEXT,
		title TEXT,
		live_title TEXT,
		area_name TEXT,
		file_path TEXT NOT NULL UNIQUE,
		file_name TEXT,
		file_size INTEGER,
		start_time DATETIME,
		end_time DATETIME,
		recording INTEGER,
		upload INTEGER,
		uploading INTEGER,
		file_delete INTEGER,
		file_moved INTEGER,
		page INTEGER,
		xcode_state INTEGER`
	if !schema.legacy {
		parts += `,
		duration INTEGER,
		cid INTEGER`
	}
	parts += `)`

	return []string{rooms, histories, parts}
}
