package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// A database backed by a single JSON file. Every save writes a full
// snapshot to a temporary file next to the target and renames it into place,
// so readers never observe a partially written file
type Database struct {
	filename string
	mu       sync.Mutex
}

func NewDatabase(filename string) *Database {
	return &Database{filename: filename}
}

func (db *Database) Filename() string {
	return db.filename
}

// Decode the contents of the file into target.
// A missing or empty file leaves target untouched and is not an error
func (db *Database) Load(target any) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, err := os.ReadFile(db.filename)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Msg(fmt.Sprintf("Database file %s does not exist yet", db.filename))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read database %s: %w", db.filename, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode database %s: %w", db.filename, err)
	}
	return nil
}

// Overwrite the file with the JSON encoding of value
func (db *Database) Save(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode database %s: %w", db.filename, err)
	}
	data = append(data, '\n')

	db.mu.Lock()
	defer db.mu.Unlock()

	dir := filepath.Dir(db.filename)
	tmp, err := os.CreateTemp(dir, filepath.Base(db.filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	// A no-op once the rename succeeded
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, db.filename); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpName, db.filename, err)
	}
	log.Debug().Msg(fmt.Sprintf("Database %s written (%d bytes)", db.filename, len(data)))
	return nil
}
