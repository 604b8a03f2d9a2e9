package db

import (
	"path/filepath"
	"testing"
)

func TestConnectSQLite(t *testing.T) {
	database, err := ConnectSQLite(filepath.Join(t.TempDir(), "fulfillment.sqlite"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	var one int
	if err := database.DB.Raw("SELECT 1").Scan(&one).Error; err != nil || one != 1 {
		t.Fatalf("unexpected select result %d %v", one, err)
	}
}

func TestConnectRequiresDSN(t *testing.T) {
	if _, err := ConnectPostgres(""); err == nil {
		t.Fatalf("expected missing dsn error")
	}
	if _, err := ConnectSQLite(""); err == nil {
		t.Fatalf("expected missing path error")
	}
	var empty *Database
	if err := empty.Close(); err != nil {
		t.Fatalf("nil close must be a no-op, got %v", err)
	}
}
