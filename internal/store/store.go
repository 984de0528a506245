package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wesellis/pulse-activity-tracker/internal/engine"
	_ "modernc.org/sqlite"
)

// Store handles persistent storage using SQLite. The engine itself never
// touches the database; the CLI and the daemon read samples and tasks from
// here and hand them to the engine in memory.
type Store struct {
	db *sql.DB
}

// NewStore creates a new store and initializes the database
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initialize creates the database schema
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		productivity_score REAL NOT NULL DEFAULT 0,
		focus_score REAL NOT NULL DEFAULT 0,
		duration_seconds REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		estimated_duration_hours REAL NOT NULL,
		priority INTEGER NOT NULL DEFAULT 2,
		required_energy INTEGER NOT NULL DEFAULT 2,
		deadline TEXT,
		context TEXT DEFAULT 'work',
		flexibility REAL DEFAULT 0.5,
		compensation_for TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_activities_timestamp ON activities(timestamp);
	CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(deadline);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSample stores one activity sample
func (s *Store) SaveSample(sample engine.ActivitySample) error {
	if err := sample.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO activities (timestamp, productivity_score, focus_score, duration_seconds)
		VALUES (?, ?, ?, ?)`

	_, err := s.db.Exec(query, sample.Timestamp.Format(time.RFC3339),
		sample.ProductivityScore, sample.FocusScore, sample.DurationSeconds)
	return err
}

// ListSamplesSince retrieves all samples recorded at or after the given time
func (s *Store) ListSamplesSince(since time.Time) ([]engine.ActivitySample, error) {
	query := `SELECT timestamp, productivity_score, focus_score, duration_seconds
		FROM activities WHERE timestamp >= ? ORDER BY timestamp`

	rows, err := s.db.Query(query, since.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := []engine.ActivitySample{}
	for rows.Next() {
		var sample engine.ActivitySample
		var ts string

		if err := rows.Scan(&ts, &sample.ProductivityScore, &sample.FocusScore, &sample.DurationSeconds); err != nil {
			return nil, err
		}

		// A row with an unparseable timestamp is kept with a zero time; the
		// engine skips it with a warning rather than failing the whole read.
		sample.Timestamp, _ = time.Parse(time.RFC3339, ts)
		samples = append(samples, sample)
	}

	return samples, rows.Err()
}

// SaveTask saves or updates a task
func (s *Store) SaveTask(t engine.CompensationTask) error {
	if err := t.Validate(); err != nil {
		return err
	}

	var deadlineStr sql.NullString
	if t.Deadline != nil {
		deadlineStr = sql.NullString{String: t.Deadline.Format(time.RFC3339), Valid: true}
	}

	query := `INSERT OR REPLACE INTO tasks
		(id, title, estimated_duration_hours, priority, required_energy, deadline,
		 context, flexibility, compensation_for, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, t.ID, t.Title, t.EstimatedDurationHours, int(t.Priority),
		int(t.RequiredEnergy), deadlineStr, t.Context, t.Flexibility, t.CompensationFor, time.Now())
	return err
}

// ListTasks retrieves all tasks, earliest deadline first
func (s *Store) ListTasks() ([]engine.CompensationTask, error) {
	query := `SELECT id, title, estimated_duration_hours, priority, required_energy,
		deadline, context, flexibility, compensation_for
		FROM tasks ORDER BY deadline IS NULL, deadline, priority DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []engine.CompensationTask{}
	for rows.Next() {
		var t engine.CompensationTask
		var priority, requiredEnergy int
		var deadlineStr, compensationFor sql.NullString

		err := rows.Scan(&t.ID, &t.Title, &t.EstimatedDurationHours, &priority,
			&requiredEnergy, &deadlineStr, &t.Context, &t.Flexibility, &compensationFor)
		if err != nil {
			return nil, err
		}

		t.Priority = engine.TaskPriority(priority)
		t.RequiredEnergy = engine.EnergyLevel(requiredEnergy)
		if deadlineStr.Valid {
			if dt, err := time.Parse(time.RFC3339, deadlineStr.String); err == nil {
				t.Deadline = &dt
			}
		}
		if compensationFor.Valid {
			t.CompensationFor = compensationFor.String
		}

		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// GetTask retrieves a single task by ID
func (s *Store) GetTask(id string) (*engine.CompensationTask, error) {
	query := `SELECT id, title, estimated_duration_hours, priority, required_energy,
		deadline, context, flexibility, compensation_for
		FROM tasks WHERE id = ?`

	var t engine.CompensationTask
	var priority, requiredEnergy int
	var deadlineStr, compensationFor sql.NullString

	err := s.db.QueryRow(query, id).Scan(&t.ID, &t.Title, &t.EstimatedDurationHours,
		&priority, &requiredEnergy, &deadlineStr, &t.Context, &t.Flexibility, &compensationFor)
	if err != nil {
		return nil, err
	}

	t.Priority = engine.TaskPriority(priority)
	t.RequiredEnergy = engine.EnergyLevel(requiredEnergy)
	if deadlineStr.Valid {
		if dt, err := time.Parse(time.RFC3339, deadlineStr.String); err == nil {
			t.Deadline = &dt
		}
	}
	if compensationFor.Valid {
		t.CompensationFor = compensationFor.String
	}

	return &t, nil
}

// DeleteTask deletes a task by ID
func (s *Store) DeleteTask(id string) error {
	query := `DELETE FROM tasks WHERE id = ?`
	_, err := s.db.Exec(query, id)
	return err
}
