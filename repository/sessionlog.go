package repository

import (
	"database/sql"
	"log"
	"time"
)

// SessionLog records room lifecycle rows for later inspection. The relay
// works fine without it: a nil *SessionLog is a no-op on every method, so
// callers never branch on whether persistence is configured.
type SessionLog struct {
	db *sql.DB
}

func NewSessionLog(db *sql.DB) *SessionLog {
	return &SessionLog{db: db}
}

// EnsureSchema creates the sessions table if it is missing.
func (s *SessionLog) EnsureSchema() error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS pong_sessions (
			id          SERIAL PRIMARY KEY,
			room_code   TEXT NOT NULL,
			host_name   TEXT NOT NULL,
			guest_name  TEXT,
			created_at  TIMESTAMPTZ NOT NULL,
			joined_at   TIMESTAMPTZ,
			closed_at   TIMESTAMPTZ,
			close_reason TEXT
		)`)
	return err
}

func (s *SessionLog) RoomCreated(code, hostName string) {
	if s == nil {
		return
	}
	_, err := s.db.Exec(
		"INSERT INTO pong_sessions (room_code, host_name, created_at) VALUES ($1, $2, $3)",
		code, hostName, time.Now())
	if err != nil {
		log.Println(err)
	}
}

func (s *SessionLog) RoomJoined(code, guestName string) {
	if s == nil {
		return
	}
	_, err := s.db.Exec(
		`UPDATE pong_sessions SET guest_name = $2, joined_at = $3
		 WHERE id = (SELECT id FROM pong_sessions WHERE room_code = $1 AND closed_at IS NULL ORDER BY id DESC LIMIT 1)`,
		code, guestName, time.Now())
	if err != nil {
		log.Println(err)
	}
}

func (s *SessionLog) RoomClosed(code, reason string) {
	if s == nil {
		return
	}
	_, err := s.db.Exec(
		`UPDATE pong_sessions SET closed_at = $2, close_reason = $3
		 WHERE id = (SELECT id FROM pong_sessions WHERE room_code = $1 AND closed_at IS NULL ORDER BY id DESC LIMIT 1)`,
		code, time.Now(), reason)
	if err != nil {
		log.Println(err)
	}
}
