package bot

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type SessionState int

const (
	SESSION_STARTED           SessionState = iota
	SESSION_SCHOOL_CHOSEN     SessionState = iota
	SESSION_DETAILS_SUBMITTED SessionState = iota
	SESSION_FINALIZED         SessionState = iota
)

var stateNames = map[SessionState]string{
	SESSION_STARTED:           "started",
	SESSION_SCHOOL_CHOSEN:     "school chosen",
	SESSION_DETAILS_SUBMITTED: "details submitted",
	SESSION_FINALIZED:         "finalized",
}

func (state SessionState) String() string {
	if name, ok := stateNames[state]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(state))
}

// Names of the required fields, in the order they are reported
const (
	FIELD_SCHOOL       = "school"
	FIELD_LOCATION     = "location"
	FIELD_AVAILABILITY = "availability"
)

var (
	ErrSessionIncomplete = errors.New("session is missing required fields")
	ErrSessionFinalizing = errors.New("session is already being finalized")
	ErrSessionFinalized  = errors.New("session is finalized")
)

// Events that move a session forward
type SessionEvent interface {
	apply(session *Session)
}

type SchoolChosen struct {
	School string
}

type DetailsSubmitted struct {
	Location     string
	Availability string
}

func (event SchoolChosen) apply(session *Session) {
	session.School = event.School
}

func (event DetailsSubmitted) apply(session *Session) {
	session.Location = event.Location
	session.Availability = event.Availability
}

// The answers of one member while onboarding is in progress
type Session struct {
	UserId       string
	GuildId      string
	School       string
	Location     string
	Availability string
	State        SessionState
	UpdatedAt    time.Time
}

// Required fields still empty, in a stable order
func (session *Session) Missing() []string {
	missing := []string{}
	if session.School == "" {
		missing = append(missing, FIELD_SCHOOL)
	}
	if session.Location == "" {
		missing = append(missing, FIELD_LOCATION)
	}
	if session.Availability == "" {
		missing = append(missing, FIELD_AVAILABILITY)
	}
	return missing
}

// The single transition function of the session state machine.
// Details may arrive before the school; the state only reaches
// SESSION_DETAILS_SUBMITTED once every required field is present
func (session *Session) Apply(event SessionEvent, now time.Time) error {
	if session.State == SESSION_FINALIZED {
		return ErrSessionFinalized
	}
	event.apply(session)
	session.UpdatedAt = now
	switch {
	case len(session.Missing()) == 0:
		session.State = SESSION_DETAILS_SUBMITTED
	case session.School != "":
		session.State = SESSION_SCHOOL_CHOSEN
	default:
		session.State = SESSION_STARTED
	}
	return nil
}

// IncompleteError names the fields that prevent a session from finalizing
type IncompleteError struct {
	Missing []string
}

func (err *IncompleteError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSessionIncomplete, err.Missing)
}

func (err *IncompleteError) Unwrap() error {
	return ErrSessionIncomplete
}

// All the sessions in progress, keyed by member id
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessions(now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{sessions: map[string]*Session{}, now: now}
}

// Start onboarding for a member. An existing session keeps its answers,
// only the guild is refreshed when known. A finalized session is replaced
func (sessions *Sessions) Begin(userId string, guildId string) Session {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	session := sessions.getOrCreate(userId)
	if session.State == SESSION_FINALIZED {
		session = &Session{UserId: userId}
		sessions.sessions[userId] = session
	}
	if guildId != "" {
		session.GuildId = guildId
	}
	session.UpdatedAt = sessions.now()
	return *session
}

// Apply an event to the session of a member, creating the session if absent
func (sessions *Sessions) Apply(userId string, guildId string, event SessionEvent) (Session, error) {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	session := sessions.getOrCreate(userId)
	if err := session.Apply(event, sessions.now()); err != nil {
		return *session, err
	}
	if guildId != "" {
		session.GuildId = guildId
	}
	return *session, nil
}

func (sessions *Sessions) Get(userId string) (Session, bool) {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	session, ok := sessions.sessions[userId]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Claim a complete session for finalizing. Incomplete sessions are left
// untouched and reported with an *IncompleteError. Only one claim per
// session succeeds, the rest get ErrSessionFinalizing
func (sessions *Sessions) Claim(userId string) (Session, error) {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	session, ok := sessions.sessions[userId]
	if !ok {
		empty := Session{UserId: userId}
		return empty, &IncompleteError{Missing: empty.Missing()}
	}
	if session.State == SESSION_FINALIZED {
		return *session, ErrSessionFinalizing
	}
	if missing := session.Missing(); len(missing) > 0 {
		return *session, &IncompleteError{Missing: missing}
	}
	session.State = SESSION_FINALIZED
	session.UpdatedAt = sessions.now()
	return *session, nil
}

// Reopen a claimed session after a failed finalize
func (sessions *Sessions) Release(userId string) {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	session, ok := sessions.sessions[userId]
	if !ok || session.State != SESSION_FINALIZED {
		return
	}
	session.State = SESSION_DETAILS_SUBMITTED
	session.UpdatedAt = sessions.now()
}

func (sessions *Sessions) Delete(userId string) {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	delete(sessions.sessions, userId)
}

// Drop sessions not updated for longer than timeout.
// Sessions being finalized are kept. Returns the ids removed
func (sessions *Sessions) Expire(timeout time.Duration) []string {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()

	expired := []string{}
	cutoff := sessions.now().Add(-timeout)
	for userId, session := range sessions.sessions {
		if session.State == SESSION_FINALIZED {
			continue
		}
		if session.UpdatedAt.Before(cutoff) {
			delete(sessions.sessions, userId)
			expired = append(expired, userId)
		}
	}
	return expired
}

func (sessions *Sessions) Len() int {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	return len(sessions.sessions)
}

func (sessions *Sessions) getOrCreate(userId string) *Session {
	session, ok := sessions.sessions[userId]
	if !ok {
		session = &Session{UserId: userId, State: SESSION_STARTED, UpdatedAt: sessions.now()}
		sessions.sessions[userId] = session
	}
	return session
}
