package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/clausewise/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Pinger = (*Store)(nil)

// DefaultFileName is the database file created under the data directory.
const DefaultFileName = "history.db"

// Store is a unified SQLite-based storage that provides access to
// the history store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database at dbPath and runs migrations.
// If dbPath is empty, defaults to ~/.clausewise/data/history.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".clausewise", "data", DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AnalysisStore returns the analysis history store.
func (s *Store) AnalysisStore() driven.AnalysisStore {
	return &analysisStore{db: s.db}
}

// ChatHistoryStore returns the chat turn store.
func (s *Store) ChatHistoryStore() driven.ChatHistoryStore {
	return &chatHistoryStore{db: s.db}
}

// migrate applies every NNN_name.up.sql newer than the recorded version.
// Each migration and its version row commit together.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// analysisStore implements driven.AnalysisStore.
type analysisStore struct {
	db *sql.DB
}

var _ driven.AnalysisStore = (*analysisStore)(nil)

// Save stores or replaces an analysis.
func (s *analysisStore) Save(ctx context.Context, analysis *domain.DocumentAnalysis) error {
	if analysis == nil || analysis.ID == "" {
		return domain.ErrInvalidInput
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshalling analysis: %w", err)
	}
	row := analysis.Summary()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, filename, mime_type, language, clause_count, overall_risk, degraded, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			mime_type = excluded.mime_type,
			language = excluded.language,
			clause_count = excluded.clause_count,
			overall_risk = excluded.overall_risk,
			degraded = excluded.degraded,
			created_at = excluded.created_at,
			payload = excluded.payload
	`, row.ID, row.Filename, analysis.MimeType, row.Language, row.ClauseCount,
		string(row.OverallRisk), row.Degraded, row.CreatedAt.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("saving analysis: %w", err)
	}
	return nil
}

// Get retrieves an analysis by ID.
func (s *analysisStore) Get(ctx context.Context, id string) (*domain.DocumentAnalysis, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM analyses WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting analysis: %w", err)
	}

	var analysis domain.DocumentAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return nil, fmt.Errorf("decoding analysis %s: %w", id, err)
	}
	return &analysis, nil
}

// List returns the most recent analyses, newest first. limit <= 0 means all.
func (s *analysisStore) List(ctx context.Context, limit int) ([]domain.AnalysisSummary, error) {
	query := `
		SELECT id, filename, language, clause_count, overall_risk, degraded, created_at
		FROM analyses
		ORDER BY created_at DESC, id ASC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var out []domain.AnalysisSummary
	for rows.Next() {
		var (
			row  domain.AnalysisSummary
			risk string
		)
		if err := rows.Scan(&row.ID, &row.Filename, &row.Language, &row.ClauseCount,
			&risk, &row.Degraded, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		row.OverallRisk = domain.RiskLevel(risk)
		out = append(out, row)
	}
	return out, rows.Err()
}

// Delete removes an analysis and its chat history.
func (s *analysisStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chat_turns WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("deleting chat turns: %w", err)
	}
	return tx.Commit()
}

// chatHistoryStore implements driven.ChatHistoryStore.
type chatHistoryStore struct {
	db *sql.DB
}

var _ driven.ChatHistoryStore = (*chatHistoryStore)(nil)

// AppendTurn records one turn.
func (s *chatHistoryStore) AppendTurn(ctx context.Context, sessionID, documentID string, turn domain.ChatTurn) error {
	if sessionID == "" || !turn.Role.IsValid() {
		return domain.ErrInvalidInput
	}
	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var conf sql.NullFloat64
	if turn.Confidence != nil {
		conf = sql.NullFloat64{Float64: *turn.Confidence, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_turns (session_id, document_id, role, text, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sessionID, documentID, string(turn.Role), turn.Text, conf, ts.UTC())
	if err != nil {
		return fmt.Errorf("saving chat turn: %w", err)
	}
	return nil
}

// ListTurns returns the turns of a session in insertion order.
func (s *chatHistoryStore) ListTurns(ctx context.Context, sessionID string) ([]domain.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, text, confidence, created_at
		FROM chat_turns
		WHERE session_id = ?
		ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing chat turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.ChatTurn
	for rows.Next() {
		var (
			turn domain.ChatTurn
			role string
			conf sql.NullFloat64
		)
		if err := rows.Scan(&role, &turn.Text, &conf, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning chat turn: %w", err)
		}
		turn.Role = domain.ChatRole(role)
		if conf.Valid {
			c := conf.Float64
			turn.Confidence = &c
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}
