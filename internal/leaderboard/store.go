package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stellarlinkco/mathbench/internal/score"
)

const defaultLimit = 50

type Store struct {
	db *sql.DB
}

// Entry is one persisted evaluation outcome for a (model, dataset) pair.
// Subject scores may be NaN when the dataset carries no questions for that
// subject; NaN round-trips through the store as NULL.
type Entry struct {
	ID             int64
	ModelID        string
	Dataset        string
	Score          float64
	MathScore      float64
	PhysicsScore   float64
	TotalQuestions int
	CorrectCount   int
	FailedCount    int
	CachedCount    int
	TotalTokens    int
	EvalTime       time.Duration
	EvalDate       time.Time
}

// FailedRun records a (model, dataset) pair whose run never produced a
// score. Failed pairs stay visible on the board instead of vanishing.
type FailedRun struct {
	ID       int64
	ModelID  string
	Dataset  string
	Reason   string
	EvalDate time.Time
}

// NewEntry converts an aggregated score into a storable entry.
func NewEntry(sc score.ModelScore) Entry {
	return Entry{
		ModelID:        sc.ModelID,
		Dataset:        sc.Dataset,
		Score:          sc.Score,
		MathScore:      sc.MathScore,
		PhysicsScore:   sc.PhysicsScore,
		TotalQuestions: sc.TotalQuestions,
		CorrectCount:   sc.CorrectCount,
		FailedCount:    sc.FailedCount,
		CachedCount:    sc.CachedCount,
		TotalTokens:    sc.TotalTokens,
		EvalTime:       sc.EvaluationTime,
	}
}

func NewStore(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("leaderboard: empty db path")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("leaderboard: create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: open db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("leaderboard: ping db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("leaderboard: nil db")
	}

	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS leaderboard_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			model_id TEXT NOT NULL,
			dataset TEXT NOT NULL,
			score REAL NOT NULL,
			math_score REAL,
			physics_score REAL,
			total_questions INTEGER NOT NULL,
			correct_count INTEGER NOT NULL,
			failed_count INTEGER NOT NULL,
			cached_count INTEGER NOT NULL,
			total_tokens INTEGER NOT NULL,
			eval_time_ms INTEGER NOT NULL,
			eval_date INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS failed_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			model_id TEXT NOT NULL,
			dataset TEXT NOT NULL,
			reason TEXT NOT NULL,
			eval_date INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_dataset ON leaderboard_entries(dataset)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_model_dataset ON leaderboard_entries(model_id, dataset)`,
		`CREATE INDEX IF NOT EXISTS idx_failed_dataset ON failed_runs(dataset)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("leaderboard: init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, entry *Entry) error {
	if s == nil || s.db == nil {
		return errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return errors.New("leaderboard: nil context")
	}
	if entry == nil {
		return errors.New("leaderboard: nil entry")
	}

	modelID := strings.TrimSpace(entry.ModelID)
	dataset := strings.TrimSpace(entry.Dataset)
	if modelID == "" || dataset == "" {
		return errors.New("leaderboard: missing model/dataset")
	}

	evalDate := entry.EvalDate
	if evalDate.IsZero() {
		evalDate = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO leaderboard_entries (
			model_id, dataset, score, math_score, physics_score,
			total_questions, correct_count, failed_count, cached_count,
			total_tokens, eval_time_ms, eval_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, modelID, dataset, entry.Score, toNullFloat(entry.MathScore), toNullFloat(entry.PhysicsScore),
		entry.TotalQuestions, entry.CorrectCount, entry.FailedCount, entry.CachedCount,
		entry.TotalTokens, entry.EvalTime.Milliseconds(), evalDate.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("leaderboard: insert entry: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	entry.EvalDate = evalDate
	entry.ModelID = modelID
	entry.Dataset = dataset
	return nil
}

func (s *Store) SaveFailure(ctx context.Context, run *FailedRun) error {
	if s == nil || s.db == nil {
		return errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return errors.New("leaderboard: nil context")
	}
	if run == nil {
		return errors.New("leaderboard: nil failed run")
	}

	modelID := strings.TrimSpace(run.ModelID)
	dataset := strings.TrimSpace(run.Dataset)
	if modelID == "" || dataset == "" {
		return errors.New("leaderboard: missing model/dataset")
	}

	evalDate := run.EvalDate
	if evalDate.IsZero() {
		evalDate = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO failed_runs (model_id, dataset, reason, eval_date)
		VALUES (?, ?, ?, ?)
	`, modelID, dataset, run.Reason, evalDate.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("leaderboard: insert failed run: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		run.ID = id
	}
	run.EvalDate = evalDate
	run.ModelID = modelID
	run.Dataset = dataset
	return nil
}

// GetLeaderboard returns each model's best entry for the dataset, ranked by
// score. Ties keep the most recent run.
func (s *Store) GetLeaderboard(ctx context.Context, dataset string, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	dataset = strings.TrimSpace(dataset)
	if dataset == "" {
		return nil, errors.New("leaderboard: empty dataset")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model_id, dataset, score, math_score, physics_score,
			total_questions, correct_count, failed_count, cached_count,
			total_tokens, eval_time_ms, MAX(eval_date)
		FROM leaderboard_entries e
		WHERE dataset = ?
			AND score = (
				SELECT MAX(score) FROM leaderboard_entries
				WHERE model_id = e.model_id AND dataset = e.dataset
			)
		GROUP BY model_id
		ORDER BY score DESC, eval_date DESC
		LIMIT ?
	`, dataset, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query leaderboard: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetModelHistory returns every entry for the (model, dataset) pair, newest
// first.
func (s *Store) GetModelHistory(ctx context.Context, modelID, dataset string) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	modelID = strings.TrimSpace(modelID)
	dataset = strings.TrimSpace(dataset)
	if modelID == "" || dataset == "" {
		return nil, errors.New("leaderboard: missing model/dataset")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model_id, dataset, score, math_score, physics_score,
			total_questions, correct_count, failed_count, cached_count,
			total_tokens, eval_time_ms, eval_date
		FROM leaderboard_entries
		WHERE model_id = ? AND dataset = ?
		ORDER BY eval_date DESC
	`, modelID, dataset)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query model history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetFailures lists failed runs for the dataset, newest first.
func (s *Store) GetFailures(ctx context.Context, dataset string) ([]FailedRun, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("leaderboard: nil store")
	}
	if ctx == nil {
		return nil, errors.New("leaderboard: nil context")
	}
	dataset = strings.TrimSpace(dataset)
	if dataset == "" {
		return nil, errors.New("leaderboard: empty dataset")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model_id, dataset, reason, eval_date
		FROM failed_runs
		WHERE dataset = ?
		ORDER BY eval_date DESC
	`, dataset)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: query failed runs: %w", err)
	}
	defer rows.Close()

	var out []FailedRun
	for rows.Next() {
		var r FailedRun
		var evalDateMS int64
		if err := rows.Scan(&r.ID, &r.ModelID, &r.Dataset, &r.Reason, &evalDateMS); err != nil {
			return nil, fmt.Errorf("leaderboard: scan failed run: %w", err)
		}
		r.EvalDate = time.UnixMilli(evalDateMS).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: scan rows: %w", err)
	}
	return out, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var (
			e            Entry
			mathScore    sql.NullFloat64
			physicsScore sql.NullFloat64
			evalTimeMS   int64
			evalDateMS   int64
		)
		if err := rows.Scan(
			&e.ID,
			&e.ModelID,
			&e.Dataset,
			&e.Score,
			&mathScore,
			&physicsScore,
			&e.TotalQuestions,
			&e.CorrectCount,
			&e.FailedCount,
			&e.CachedCount,
			&e.TotalTokens,
			&evalTimeMS,
			&evalDateMS,
		); err != nil {
			return nil, fmt.Errorf("leaderboard: scan entry: %w", err)
		}
		e.MathScore = fromNullFloat(mathScore)
		e.PhysicsScore = fromNullFloat(physicsScore)
		e.EvalTime = time.Duration(evalTimeMS) * time.Millisecond
		e.EvalDate = time.UnixMilli(evalDateMS).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: scan rows: %w", err)
	}
	return out, nil
}

func toNullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
