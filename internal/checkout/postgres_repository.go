package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"storefront/internal/domain"
)

// PostgresRepository implements Repository on postgres.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ConnectPostgres opens and pings a connection.
func ConnectPostgres(host string, port int, user, password, dbName string) (*sql.DB, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return db, nil
}

func (r *PostgresRepository) RunMigrations(migrationsDirPath string) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "checkout_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, s *domain.Session) error {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal line items: %w", err)
	}

	query := `
		INSERT INTO checkout_sessions (id, principal, line_items, status, url, raw_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, string(s.Principal), items, string(s.Status), s.URL, s.RawResponse, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, principal, line_items, status, url, raw_response, failure_msg, created_at, updated_at
		FROM checkout_sessions
		WHERE id = $1
	`

	var (
		s         domain.Session
		principal string
		status    string
		items     []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &principal, &items, &status, &s.URL, &s.RawResponse, &s.FailureMsg, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if err := json.Unmarshal(items, &s.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal line items: %w", err)
	}
	s.Principal = domain.Principal(principal)
	s.Status = domain.SessionStatus(status)
	return &s, nil
}

func (r *PostgresRepository) CompleteSession(ctx context.Context, id, rawResponse string, event *OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE checkout_sessions
		SET status = $2, raw_response = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`, id, string(domain.SessionStatusCompleted), rawResponse, string(domain.SessionStatusPending))
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return r.transitionConflict(ctx, id, domain.SessionStatusCompleted)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkout_outbox (id, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, event.ID, event.AggregateID, event.EventType, event.Payload, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FailSession(ctx context.Context, id, reason string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE checkout_sessions
		SET status = $2, failure_msg = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`, id, string(domain.SessionStatusFailed), reason, string(domain.SessionStatusPending))
	if err != nil {
		return fmt.Errorf("failed to fail session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return r.transitionConflict(ctx, id, domain.SessionStatusFailed)
	}
	return nil
}

// transitionConflict distinguishes "session does not exist" from
// "session already terminal" after a guarded update matched nothing.
// Re-applying the same terminal state is a no-op success.
func (r *PostgresRepository) transitionConflict(ctx context.Context, id string, target domain.SessionStatus) error {
	var current string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM checkout_sessions WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to query session status: %w", err)
	}

	if domain.SessionStatus(current) == target {
		return nil
	}
	return ErrIllegalTransition
}

func (r *PostgresRepository) UnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM checkout_outbox
		WHERE processed_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		e := &OutboxEvent{}
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *PostgresRepository) MarkEventProcessed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE checkout_outbox SET processed_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return nil
}
