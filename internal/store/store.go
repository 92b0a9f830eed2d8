// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists user records in a SQLite database with
// load-all/save-all semantics. The in-memory collection is the unit of
// work: a processing pass loads it, mutates it, and persists it whole.
// It is safe only under single-writer, single-pass execution.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/recruit-engine/pkg/types"
)

// ErrSchemaMismatch reports that the users table on disk does not carry the
// exact UserColumns set. Schema drift is fatal for the store; there is no
// migration path.
var ErrSchemaMismatch = errors.New("user store schema mismatch")

// Store is the full collection of user records, keyed by author identifier.
type Store struct {
	db      *sql.DB
	records map[string]types.UserRecord
}

// Open opens or creates the user store database at path and verifies the
// users table against the fixed column set.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:      db,
		records: make(map[string]types.UserRecord),
	}

	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the users table if absent, or verifies that an
// existing table carries exactly the expected columns.
func (s *Store) ensureSchema() error {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info('users') ORDER BY cid`)
	if err != nil {
		return fmt.Errorf("inspecting schema: %w", err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("reading schema: %w", err)
		}
		existing = append(existing, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	if len(existing) == 0 {
		return s.createSchema()
	}

	if len(existing) != len(types.UserColumns) {
		return fmt.Errorf("%w: table has %d columns, expected %d",
			ErrSchemaMismatch, len(existing), len(types.UserColumns))
	}
	want := make(map[string]bool, len(types.UserColumns))
	for _, col := range types.UserColumns {
		want[col] = true
	}
	for _, col := range existing {
		if !want[col] {
			return fmt.Errorf("%w: unexpected column %q", ErrSchemaMismatch, col)
		}
	}
	return nil
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		age_range TEXT,
		gender TEXT,
		location TEXT,
		income_level TEXT,
		education_level TEXT,
		illness_types TEXT,
		treatment_history TEXT,
		clinical_trial_interest TEXT,
		money_making_interest TEXT,
		clinical_trials_sentiment REAL,
		treatment_sentiment REAL,
		num_comments INTEGER NOT NULL DEFAULT 0,
		avg_score REAL NOT NULL DEFAULT 0,
		conversation_depth INTEGER NOT NULL DEFAULT 0,
		conversation_count INTEGER NOT NULL DEFAULT 0,
		parent_interactions INTEGER NOT NULL DEFAULT 0,
		community_types TEXT
	)`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Load replaces the in-memory collection with the database contents.
func (s *Store) Load() error {
	rows, err := s.db.Query(`SELECT user_id, username, created_at, updated_at,
		age_range, gender, location, income_level, education_level,
		illness_types, treatment_history,
		clinical_trial_interest, money_making_interest,
		clinical_trials_sentiment, treatment_sentiment,
		num_comments, avg_score, conversation_depth, conversation_count,
		parent_interactions, community_types
		FROM users`)
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	defer rows.Close()

	records := make(map[string]types.UserRecord)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return fmt.Errorf("loading users: %w", err)
		}
		records[rec.UserID] = rec
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading users: %w", err)
	}

	s.records = records
	return nil
}

// Persist writes the whole in-memory collection in one transaction,
// replacing the database contents.
func (s *Store) Persist() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM users`); err != nil {
		return fmt.Errorf("clearing users: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO users (user_id, username, created_at, updated_at,
		age_range, gender, location, income_level, education_level,
		illness_types, treatment_history,
		clinical_trial_interest, money_making_interest,
		clinical_trials_sentiment, treatment_sentiment,
		num_comments, avg_score, conversation_depth, conversation_count,
		parent_interactions, community_types)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range s.All() {
		illness, _ := json.Marshal(rec.Features.IllnessTypes)
		treatments, _ := json.Marshal(rec.Features.TreatmentHistory)
		communities, _ := json.Marshal(rec.CommunityTypes)

		_, err := stmt.Exec(
			rec.UserID, rec.Username,
			rec.CreatedAt.UTC().Format(time.RFC3339Nano),
			rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
			rec.Features.AgeRange, rec.Features.Gender, rec.Features.Location,
			rec.Features.IncomeLevel, rec.Features.EducationLevel,
			string(illness), string(treatments),
			rec.Features.ClinicalTrialInterest, rec.Features.MoneyMakingInterest,
			rec.Features.ClinicalTrialsSentiment, rec.Features.TreatmentSentiment,
			rec.NumComments, rec.AvgScore, rec.ConversationDepth,
			rec.ConversationCount, rec.ParentInteractions, string(communities),
		)
		if err != nil {
			return fmt.Errorf("inserting user %s: %w", rec.UserID, err)
		}
	}

	return tx.Commit()
}

func scanRecord(rows *sql.Rows) (types.UserRecord, error) {
	var (
		rec                            types.UserRecord
		createdAt, updatedAt           string
		illnessJSON, treatmentJSON     sql.NullString
		communitiesJSON                sql.NullString
		ageRange, gender, location     sql.NullString
		incomeLevel, educationLevel    sql.NullString
		trialInterest, moneyInterest   sql.NullString
		trialSentiment, treatSentiment sql.NullFloat64
	)

	err := rows.Scan(&rec.UserID, &rec.Username, &createdAt, &updatedAt,
		&ageRange, &gender, &location, &incomeLevel, &educationLevel,
		&illnessJSON, &treatmentJSON,
		&trialInterest, &moneyInterest,
		&trialSentiment, &treatSentiment,
		&rec.NumComments, &rec.AvgScore, &rec.ConversationDepth,
		&rec.ConversationCount, &rec.ParentInteractions, &communitiesJSON)
	if err != nil {
		return rec, err
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return rec, fmt.Errorf("parsing created_at for %s: %w", rec.UserID, err)
	}
	rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return rec, fmt.Errorf("parsing updated_at for %s: %w", rec.UserID, err)
	}

	rec.Features.AgeRange = nullableString(ageRange)
	rec.Features.Gender = nullableString(gender)
	rec.Features.Location = nullableString(location)
	rec.Features.IncomeLevel = nullableString(incomeLevel)
	rec.Features.EducationLevel = nullableString(educationLevel)
	rec.Features.ClinicalTrialInterest = nullableString(trialInterest)
	rec.Features.MoneyMakingInterest = nullableString(moneyInterest)
	rec.Features.ClinicalTrialsSentiment = nullableFloat(trialSentiment)
	rec.Features.TreatmentSentiment = nullableFloat(treatSentiment)

	if rec.Features.IllnessTypes, err = decodeList(illnessJSON, "illness_types", rec.UserID); err != nil {
		return rec, err
	}
	if rec.Features.TreatmentHistory, err = decodeList(treatmentJSON, "treatment_history", rec.UserID); err != nil {
		return rec, err
	}
	if rec.CommunityTypes, err = decodeList(communitiesJSON, "community_types", rec.UserID); err != nil {
		return rec, err
	}

	return rec, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// decodeList decodes a JSON-encoded string list column. A corrupt value is
// an error, not a silent nil; the store never coerces bad rows.
func decodeList(v sql.NullString, column, userID string) ([]string, error) {
	if !v.Valid || v.String == "" || v.String == "null" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(v.String), &list); err != nil {
		return nil, fmt.Errorf("decoding %s for %s: %w", column, userID, err)
	}
	return list, nil
}

// Upsert inserts a record or wholly replaces the existing record under the
// same key. Last write wins; there is no field-level merge.
func (s *Store) Upsert(rec types.UserRecord) {
	s.records[rec.UserID] = rec
}

// Get returns the record for an author identifier.
func (s *Store) Get(userID string) (types.UserRecord, bool) {
	rec, ok := s.records[userID]
	return rec, ok
}

// Len returns the collection size.
func (s *Store) Len() int {
	return len(s.records)
}

// All returns every record sorted by author identifier.
func (s *Store) All() []types.UserRecord {
	out := make([]types.UserRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
