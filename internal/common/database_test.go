package common

import (
	"os"
	"path/filepath"
	"testing"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDatabase_LoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	db := NewDatabase(filepath.Join(t.TempDir(), "missing.json"))
	got := map[string]entry{}
	if err := db.Load(&got); err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Load() len=%d, want 0", len(got))
	}
}

func TestDatabase_SaveThenLoad(t *testing.T) {
	t.Parallel()

	filename := filepath.Join(t.TempDir(), "db.json")
	db := NewDatabase(filename)
	want := map[string]entry{"a": {Name: "alpha", Count: 1}, "b": {Name: "beta", Count: 2}}
	if err := db.Save(want); err != nil {
		t.Fatalf("Save() err=%v", err)
	}

	got := map[string]entry{}
	if err := NewDatabase(filename).Load(&got); err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if len(got) != 2 || got["a"] != want["a"] || got["b"] != want["b"] {
		t.Fatalf("Load()=%v, want %v", got, want)
	}
}

func TestDatabase_SaveOverwritesAndLeavesNoTemporaryFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db := NewDatabase(filepath.Join(dir, "db.json"))
	if err := db.Save(map[string]entry{"a": {Name: "first"}}); err != nil {
		t.Fatalf("Save(first) err=%v", err)
	}
	if err := db.Save(map[string]entry{"b": {Name: "second"}}); err != nil {
		t.Fatalf("Save(second) err=%v", err)
	}

	got := map[string]entry{}
	if err := db.Load(&got); err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if _, ok := got["a"]; ok || got["b"].Name != "second" {
		t.Fatalf("Load()=%v, want only the second snapshot", got)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() err=%v", err)
	}
	if len(files) != 1 {
		t.Fatalf("directory has %d files, want 1", len(files))
	}
}

func TestDatabase_LoadRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	filename := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(filename, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile() err=%v", err)
	}
	got := map[string]entry{}
	if err := NewDatabase(filename).Load(&got); err == nil {
		t.Fatalf("Load() err=nil, want decode error")
	}
}

func TestDatabase_SaveFailsWhenDirectoryIsMissing(t *testing.T) {
	t.Parallel()

	db := NewDatabase(filepath.Join(t.TempDir(), "nope", "db.json"))
	if err := db.Save(map[string]entry{}); err == nil {
		t.Fatalf("Save() err=nil, want error")
	}
}
