package migrations

import (
	"strings"
	"testing"
)

func TestEmbeddedFSContainsKVMigration(t *testing.T) {
	content, err := FS.ReadFile("001_kv.sql")
	if err != nil {
		t.Fatalf("failed to read migration: %v", err)
	}
	if !strings.Contains(string(content), "-- +goose Up") {
		t.Fatalf("migration is missing goose Up directive")
	}
	if !strings.Contains(string(content), "CREATE TABLE IF NOT EXISTS kv") {
		t.Fatalf("migration does not create kv table")
	}
}
