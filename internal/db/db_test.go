package db

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
)

func setupDB(t *testing.T) *DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db, err := OpenConn(conn)
	if err != nil {
		t.Fatalf("init schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return db
}

func makeMutation(id, itemID string, qty float64, createdAt time.Time) *models.PendingMutation {
	return &models.PendingMutation{
		ID:        id,
		Kind:      models.KindProduction,
		ItemID:    itemID,
		Quantity:  qty,
		EventAt:   createdAt,
		CreatedAt: createdAt,
	}
}

func TestInitialize_CreatesSchema(t *testing.T) {
	db := setupDB(t)

	var version string
	err := db.conn.QueryRow(`SELECT value FROM schema_info WHERE key = 'version'`).Scan(&version)
	if err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != "1" {
		t.Fatalf("schema version: got %s, want 1", version)
	}
}
