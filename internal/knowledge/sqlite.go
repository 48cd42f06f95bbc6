package knowledge

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists the knowledge base in a SQLite database using
// modernc.org/sqlite (a pure Go, CGo-free implementation).
//
// Prompt order is the prompts.id sequence and response order is
// responses.position, so iteration order survives a round trip.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at dbPath and runs
// migrations.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers inside this process.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: dbPath, logger: logger}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Load reads every prompt and its responses in stored order.
func (s *SQLiteStore) Load() (*Knowledge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT p.prompt, r.response, r.score, r.trials
		FROM prompts p
		LEFT JOIN responses r ON r.prompt_id = p.id
		ORDER BY p.id, r.position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge: %w", err)
	}
	defer rows.Close()

	k := New()
	for rows.Next() {
		var (
			prompt   string
			response sql.NullString
			score    sql.NullFloat64
			trials   sql.NullInt64
		)
		if err := rows.Scan(&prompt, &response, &score, &trials); err != nil {
			return nil, &LoadError{Kind: Corrupt, Path: s.dbPath, Err: err}
		}

		r, ok := k.Get(prompt)
		if !ok {
			r = NewResponses()
			k.Set(prompt, r)
		}
		if !response.Valid {
			continue
		}
		if trials.Int64 < 1 {
			return nil, &LoadError{Kind: Corrupt, Path: s.dbPath, Err: fmt.Errorf("response %q under %q has %d trials", response.String, prompt, trials.Int64)}
		}
		r.Put(response.String, Entry{Score: score.Float64, Trials: int(trials.Int64)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read knowledge: %w", err)
	}

	return k, nil
}

// Save replaces the response maps of every prompt in partial inside a single
// transaction. Prompts already stored keep their id, and so their position.
func (s *SQLiteStore) Save(partial *Knowledge) error {
	if partial.Len() == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, prompt := range partial.Prompts() {
		if _, err := tx.Exec(`INSERT INTO prompts (prompt) VALUES (?) ON CONFLICT(prompt) DO NOTHING`, prompt); err != nil {
			return fmt.Errorf("failed to upsert prompt: %w", err)
		}

		var promptID int64
		if err := tx.QueryRow(`SELECT id FROM prompts WHERE prompt = ?`, prompt).Scan(&promptID); err != nil {
			return fmt.Errorf("failed to look up prompt: %w", err)
		}

		if _, err := tx.Exec(`DELETE FROM responses WHERE prompt_id = ?`, promptID); err != nil {
			return fmt.Errorf("failed to clear responses: %w", err)
		}

		r, _ := partial.Get(prompt)
		for pos, response := range r.Keys() {
			e, _ := r.Get(response)
			if _, err := tx.Exec(`
				INSERT INTO responses (prompt_id, position, response, score, trials)
				VALUES (?, ?, ?, ?, ?)
			`, promptID, pos, response, e.Score, e.Trials); err != nil {
				return fmt.Errorf("failed to insert response: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit knowledge: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}
