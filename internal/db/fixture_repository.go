package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tOgg1/tally/internal/models"
)

// Fixture repository errors.
var (
	ErrFixtureNotFound      = errors.New("fixture not found")
	ErrFixtureAlreadyExists = errors.New("fixture already exists")
)

// FixtureRepository stores saved sessions and their event streams.
type FixtureRepository struct {
	db *DB
}

// NewFixtureRepository creates a new FixtureRepository.
func NewFixtureRepository(db *DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

// Create saves a fixture along with any initial events, atomically.
func (r *FixtureRepository) Create(ctx context.Context, fixture *models.Fixture, events []*models.FixtureEvent) error {
	if err := fixture.Validate(); err != nil {
		return fmt.Errorf("invalid fixture: %w", err)
	}
	if fixture.ID == "" {
		fixture.ID = uuid.New().String()
	}
	if fixture.CreatedAt.IsZero() {
		fixture.CreatedAt = time.Now().UTC()
	}

	return r.db.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fixtures (id, name, state_json, created_at)
			VALUES (?, ?, ?, ?)
		`, fixture.ID, fixture.Name, string(fixture.State), fixture.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			if isUniqueConstraintError(err) {
				return ErrFixtureAlreadyExists
			}
			return fmt.Errorf("failed to insert fixture: %w", err)
		}
		for i, event := range events {
			event.FixtureID = fixture.ID
			event.Seq = i + 1
			if err := insertFixtureEvent(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get retrieves a fixture by ID.
func (r *FixtureRepository) Get(ctx context.Context, id string) (*models.Fixture, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, state_json, created_at FROM fixtures WHERE id = ?
	`, id)
	return scanFixture(row)
}

// GetByName retrieves a fixture by its unique name.
func (r *FixtureRepository) GetByName(ctx context.Context, name string) (*models.Fixture, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, state_json, created_at FROM fixtures WHERE name = ?
	`, name)
	return scanFixture(row)
}

// List returns all fixtures ordered by name.
func (r *FixtureRepository) List(ctx context.Context) ([]*models.Fixture, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, state_json, created_at FROM fixtures ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []*models.Fixture
	for rows.Next() {
		fixture, err := scanFixture(rows)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, fixture)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fixtures: %w", err)
	}
	return fixtures, nil
}

// Delete removes a fixture and its events.
func (r *FixtureRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM fixtures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fixture: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrFixtureNotFound
	}
	return nil
}

// AppendEvent adds event to the end of a fixture's stream and sets its
// Seq.
func (r *FixtureRepository) AppendEvent(ctx context.Context, fixtureID string, event *models.FixtureEvent) error {
	return r.db.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM fixtures WHERE id = ?`, fixtureID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFixtureNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to look up fixture: %w", err)
		}

		var maxSeq sql.NullInt64
		if err := tx.QueryRowContext(ctx, `
			SELECT MAX(seq) FROM fixture_events WHERE fixture_id = ?
		`, fixtureID).Scan(&maxSeq); err != nil {
			return fmt.Errorf("failed to read event sequence: %w", err)
		}

		event.FixtureID = fixtureID
		event.Seq = int(maxSeq.Int64) + 1
		return insertFixtureEvent(ctx, tx, event)
	})
}

// Events returns a fixture's events in replay order.
func (r *FixtureRepository) Events(ctx context.Context, fixtureID string) ([]*models.FixtureEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, fixture_id, seq, type, payload_json, created_at
		FROM fixture_events
		WHERE fixture_id = ?
		ORDER BY seq
	`, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixture events: %w", err)
	}
	defer rows.Close()

	var events []*models.FixtureEvent
	for rows.Next() {
		var event models.FixtureEvent
		var payload, createdAt string
		if err := rows.Scan(&event.ID, &event.FixtureID, &event.Seq, &event.Type, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan fixture event: %w", err)
		}
		event.Payload = []byte(payload)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			event.CreatedAt = t
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fixture events: %w", err)
	}
	return events, nil
}

func insertFixtureEvent(ctx context.Context, tx *sql.Tx, event *models.FixtureEvent) error {
	if event.Type == "" {
		return fmt.Errorf("fixture event type is required")
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	payload := string(event.Payload)
	if payload == "" {
		payload = "{}"
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO fixture_events (id, fixture_id, seq, type, payload_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.ID, event.FixtureID, event.Seq, event.Type, payload, event.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert fixture event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFixture(row rowScanner) (*models.Fixture, error) {
	var fixture models.Fixture
	var state, createdAt string
	if err := row.Scan(&fixture.ID, &fixture.Name, &state, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to scan fixture: %w", err)
	}
	fixture.State = []byte(state)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		fixture.CreatedAt = t
	}
	return &fixture, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
