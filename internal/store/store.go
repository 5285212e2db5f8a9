package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"skillradar/internal/assessment"
	"skillradar/internal/logger"
	"skillradar/internal/team"
)

// Keys of the three persisted resources.
const (
	KeyAssessments = "cyber_survey_assessments_v2"
	KeyTeams       = "cyber_survey_teams_v1"
	KeyCurrentID   = "cyber_survey_current_id_v2"
)

var ErrClosed = errors.New("store is closed")

// Store persists teams, assessments and the current selection as JSON values in SQLite.
type Store struct {
	DBPath string

	mu  sync.Mutex
	db  *sql.DB
	log *logger.Logger
}

// Open opens or creates the data database.
func Open(path string, log *logger.Logger) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve data db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open data db: %w", err)
	}

	s := &Store{
		DBPath: absPath,
		db:     db,
		log:    log.With("component", "store"),
	}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT
);
`)
	if err != nil {
		return fmt.Errorf("create data schema: %w", err)
	}
	return nil
}

func (s *Store) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

// GetKV returns the stored value, or "" when the key is absent.
func (s *Store) GetKV(key string) (string, error) {
	db, err := s.conn()
	if err != nil {
		return "", err
	}
	var value sql.NullString
	err = db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get kv %s: %w", key, err)
	}
	return value.String, nil
}

// SetKV stores value under key.
func (s *Store) SetKV(key, value string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)", key, value); err != nil {
		return fmt.Errorf("set kv %s: %w", key, err)
	}
	return nil
}

// DeleteKV removes key. Missing keys are not an error.
func (s *Store) DeleteKV(key string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete kv %s: %w", key, err)
	}
	return nil
}

// LoadAssessments returns the stored assessments. Read or decode failures are logged and
// yield an empty list.
func (s *Store) LoadAssessments() []assessment.Assessment {
	var list []assessment.Assessment
	if !s.loadJSON(KeyAssessments, &list) || list == nil {
		return []assessment.Assessment{}
	}
	return list
}

// LoadTeams returns the stored teams, or an empty list on failure.
func (s *Store) LoadTeams() []team.Team {
	var list []team.Team
	if !s.loadJSON(KeyTeams, &list) || list == nil {
		return []team.Team{}
	}
	return list
}

// LoadCurrentID returns the current selection, or "" when unset or unreadable.
func (s *Store) LoadCurrentID() string {
	id, err := s.GetKV(KeyCurrentID)
	if err != nil {
		s.log.Warn("read current selection failed", "error", err)
		return ""
	}
	return id
}

// SaveAssessments replaces the stored assessment list.
func (s *Store) SaveAssessments(list []assessment.Assessment) error {
	return s.saveJSON(KeyAssessments, nonNilAssessments(list))
}

// SaveTeams replaces the stored team list.
func (s *Store) SaveTeams(list []team.Team) error {
	return s.saveJSON(KeyTeams, nonNilTeams(list))
}

// SaveCurrentID stores the current selection. An empty id clears it.
func (s *Store) SaveCurrentID(id string) error {
	if id == "" {
		return s.DeleteKV(KeyCurrentID)
	}
	return s.SetKV(KeyCurrentID, id)
}

// Snapshot is the full persisted state.
type Snapshot struct {
	Teams       []team.Team
	Assessments []assessment.Assessment
	CurrentID   string
}

// Load reads the full state. It never fails; unreadable resources come back empty.
func (s *Store) Load() Snapshot {
	return Snapshot{
		Teams:       s.LoadTeams(),
		Assessments: s.LoadAssessments(),
		CurrentID:   s.LoadCurrentID(),
	}
}

// SaveAll writes every resource in one transaction.
func (s *Store) SaveAll(snap Snapshot) error {
	teamsJSON, err := json.Marshal(nonNilTeams(snap.Teams))
	if err != nil {
		return fmt.Errorf("marshal teams: %w", err)
	}
	assessmentsJSON, err := json.Marshal(nonNilAssessments(snap.Assessments))
	if err != nil {
		return fmt.Errorf("marshal assessments: %w", err)
	}

	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := "INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)"
	if _, err := tx.Exec(upsert, KeyTeams, string(teamsJSON)); err != nil {
		return fmt.Errorf("save teams: %w", err)
	}
	if _, err := tx.Exec(upsert, KeyAssessments, string(assessmentsJSON)); err != nil {
		return fmt.Errorf("save assessments: %w", err)
	}
	if snap.CurrentID == "" {
		_, err = tx.Exec("DELETE FROM kv WHERE key = ?", KeyCurrentID)
	} else {
		_, err = tx.Exec(upsert, KeyCurrentID, snap.CurrentID)
	}
	if err != nil {
		return fmt.Errorf("save current selection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) loadJSON(key string, dst any) bool {
	raw, err := s.GetKV(key)
	if err != nil {
		s.log.Warn("read failed, using empty list", "key", key, "error", err)
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn("decode failed, using empty list", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) saveJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.SetKV(key, string(data))
}

func nonNilTeams(list []team.Team) []team.Team {
	if list == nil {
		return []team.Team{}
	}
	return list
}

func nonNilAssessments(list []assessment.Assessment) []assessment.Assessment {
	if list == nil {
		return []assessment.Assessment{}
	}
	return list
}
