package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	DB *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &PostgresStore{DB: db}, nil
}

// EnsureSchema creates the tables on startup. The UNIQUE constraint on
// payouts.external_id is what makes SavePayout safe under races.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS payouts (
			external_id  TEXT PRIMARY KEY,
			status       TEXT NOT NULL,
			amount_cents BIGINT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS operators (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`)
	return err
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// Payouts Repo

func (p *PostgresStore) WasProcessed(ctx context.Context, externalID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := p.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payouts WHERE external_id = $1)`, externalID).
		Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// SavePayout inserts the record. Losing the insert race on external_id is not
// an error: the record comes back with status "duplicate" and the row the
// winner wrote stays untouched.
func (p *PostgresStore) SavePayout(ctx context.Context, rec PayoutRecord) (PayoutRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO payouts (external_id, status, amount_cents, created_at)
		VALUES ($1, $2, $3, $4)`,
		rec.ExternalID, rec.Status, rec.AmountCents, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			rec.Status = StatusDuplicate
			return rec, nil
		}
		return PayoutRecord{}, err
	}
	return rec, nil
}

func (p *PostgresStore) GetPayout(ctx context.Context, externalID string) (PayoutRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rec PayoutRecord
	err := p.DB.QueryRowContext(ctx, `
		SELECT external_id, status, amount_cents, created_at
		FROM payouts WHERE external_id = $1`, externalID).
		Scan(&rec.ExternalID, &rec.Status, &rec.AmountCents, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PayoutRecord{}, ErrPayoutNotFound
		}
		return PayoutRecord{}, err
	}
	return rec, nil
}

// Operators Repo

func (p *PostgresStore) CreateOperator(ctx context.Context, op Operator) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO operators (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)`,
		op.ID, op.Name, op.Email, op.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrOperatorExists
		}
		return err
	}
	return nil
}

func (p *PostgresStore) GetOperatorByEmail(ctx context.Context, email string) (Operator, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var op Operator
	err := p.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash FROM operators WHERE email = $1`, email).
		Scan(&op.ID, &op.Name, &op.Email, &op.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Operator{}, ErrOperatorNotFound
		}
		return Operator{}, err
	}
	return op, nil
}
