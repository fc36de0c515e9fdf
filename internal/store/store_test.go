package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestLoadOwnedEmptyOnFirstRun(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "nested", "badgedex.db"))
	ids, err := s.LoadOwned(context.Background())
	if err != nil {
		t.Fatalf("load owned: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty owned set, got %v", ids)
	}
	if _, ok, err := s.UpdatedAt(context.Background(), KeyOwned); err != nil || ok {
		t.Fatalf("expected no owned slot, ok=%v err=%v", ok, err)
	}
}

func TestSaveOwnedOverwritesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badgedex.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.SaveOwned(ctx, []string{"yolo", "pro", "quickdraw"}); err != nil {
		t.Fatalf("save owned: %v", err)
	}
	if err := s.SaveOwned(ctx, []string{"yolo", "pro"}); err != nil {
		t.Fatalf("save owned: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, path)
	ids, err := reopened.LoadOwned(ctx)
	if err != nil {
		t.Fatalf("load owned: %v", err)
	}
	if want := []string{"pro", "yolo"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("owned ids mismatch: got %v want %v", ids, want)
	}
	if _, ok, err := reopened.UpdatedAt(ctx, KeyOwned); err != nil || !ok {
		t.Fatalf("expected owned timestamp, ok=%v err=%v", ok, err)
	}
}

func TestSaveOwnedEmptyList(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "badgedex.db"))
	ctx := context.Background()
	if err := s.SaveOwned(ctx, nil); err != nil {
		t.Fatalf("save owned: %v", err)
	}
	raw, ok, err := s.get(ctx, KeyOwned)
	if err != nil || !ok {
		t.Fatalf("expected owned slot, ok=%v err=%v", ok, err)
	}
	if raw != "[]" {
		t.Fatalf("expected empty json list, got %q", raw)
	}
}

func TestLoadOwnedRejectsCorruptSlot(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "badgedex.db"))
	ctx := context.Background()
	if err := s.set(ctx, KeyOwned, "{not json"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := s.LoadOwned(ctx); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLinkedProfileLifecycle(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "badgedex.db"))
	ctx := context.Background()

	name, err := s.LinkedProfile(ctx)
	if err != nil || name != "" {
		t.Fatalf("expected no linked profile, got %q err=%v", name, err)
	}
	if err := s.SetLinkedProfile(ctx, "octo"); err != nil {
		t.Fatalf("set linked profile: %v", err)
	}
	if err := s.SetLinkedProfile(ctx, "octocat"); err != nil {
		t.Fatalf("set linked profile: %v", err)
	}
	name, err = s.LinkedProfile(ctx)
	if err != nil || name != "octocat" {
		t.Fatalf("expected octocat, got %q err=%v", name, err)
	}
	if err := s.ClearLinkedProfile(ctx); err != nil {
		t.Fatalf("clear linked profile: %v", err)
	}
	name, err = s.LinkedProfile(ctx)
	if err != nil || name != "" {
		t.Fatalf("expected cleared profile, got %q err=%v", name, err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badgedex.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	_ = openTestStore(t, path)
}
