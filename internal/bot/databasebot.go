package bot

import (
	"fmt"
	"sync"

	"volunteerbot/internal/common"

	"github.com/rs/zerolog/log"
)

// A finalized onboarding submission
type VolunteerRecord struct {
	UserId       string `json:"user_id"`
	UserTag      string `json:"user_tag"`
	School       string `json:"school_preference"`
	Location     string `json:"location"`
	Availability string `json:"availability"`
	Timestamp    string `json:"timestamp_iso"`
	SubmissionId string `json:"submission_id,omitempty"`
}

type Volunteers map[string]VolunteerRecord

// Volunteers kept in memory and written as a whole to a JSON file
type DatabaseBot struct {
	*common.Database
	mu         sync.RWMutex
	volunteers Volunteers
	// Held from snapshot to rename so that an older snapshot never lands last
	commitMu sync.Mutex
}

// Create the database and read the volunteers already stored in the file
func CreateDatabaseBot(dbFilename string) (*DatabaseBot, error) {
	db := &DatabaseBot{Database: common.NewDatabase(dbFilename), volunteers: Volunteers{}}
	if err := db.Load(&db.volunteers); err != nil {
		return nil, err
	}
	if db.volunteers == nil {
		db.volunteers = Volunteers{}
	}
	log.Info().Msg(fmt.Sprintf("Loaded %d volunteers from %s", len(db.volunteers), dbFilename))
	return db, nil
}

func (db *DatabaseBot) GetVolunteer(userId string) (VolunteerRecord, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	record, ok := db.volunteers[userId]
	return record, ok
}

func (db *DatabaseBot) GetVolunteers() Volunteers {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.snapshot()
}

// Insert or overwrite the record of a member in memory.
// Nothing is written until Commit
func (db *DatabaseBot) SetVolunteer(record VolunteerRecord) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.volunteers[record.UserId] = record
}

// Write every volunteer to the file
func (db *DatabaseBot) Commit() error {
	db.commitMu.Lock()
	defer db.commitMu.Unlock()

	db.mu.RLock()
	snapshot := db.snapshot()
	db.mu.RUnlock()

	if err := db.Save(snapshot); err != nil {
		return err
	}
	log.Debug().Msg(fmt.Sprintf("Committed %d volunteers", len(snapshot)))
	return nil
}

func (db *DatabaseBot) snapshot() Volunteers {
	volunteers := make(Volunteers, len(db.volunteers))
	for userId, record := range db.volunteers {
		volunteers[userId] = record
	}
	return volunteers
}
