package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tranvictor/uns/expiration"
)

// ExpirationStore implements expiration.Store on the expiration_records
// table.
type ExpirationStore struct {
	db *DB
}

func NewExpirationStore(db *DB) *ExpirationStore {
	return &ExpirationStore{db: db}
}

func toNanos(ds []time.Duration) []int64 {
	result := make([]int64, 0, len(ds))
	for _, d := range ds {
		result = append(result, int64(d))
	}
	return result
}

func fromNanos(ns []int64) []time.Duration {
	result := make([]time.Duration, 0, len(ns))
	for _, n := range ns {
		result = append(result, time.Duration(n))
	}
	return result
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (s *ExpirationStore) Save(ctx context.Context, r expiration.Record) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO expiration_records (name, expires_at, notified_ns, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			expires_at = EXCLUDED.expires_at,
			notified_ns = EXCLUDED.notified_ns,
			updated_at = EXCLUDED.updated_at
	`, r.Name, nullableTime(r.ExpiresAt), toNanos(r.Notified), r.UpdatedAt)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (expiration.Record, error) {
	var (
		r         expiration.Record
		expiresAt *time.Time
		notified  []int64
	)
	if err := row.Scan(&r.Name, &expiresAt, &notified, &r.UpdatedAt); err != nil {
		return r, err
	}
	if expiresAt != nil {
		r.ExpiresAt = *expiresAt
	}
	r.Notified = fromNanos(notified)
	return r, nil
}

func (s *ExpirationStore) Load(ctx context.Context, name string) (expiration.Record, bool, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT name, expires_at, notified_ns, updated_at
		FROM expiration_records WHERE name = $1
	`, name)
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return expiration.Record{}, false, nil
	}
	if err != nil {
		return expiration.Record{}, false, err
	}
	return r, true, nil
}

func (s *ExpirationStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM expiration_records WHERE name = $1`, name)
	return err
}

func (s *ExpirationStore) List(ctx context.Context) ([]expiration.Record, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT name, expires_at, notified_ns, updated_at
		FROM expiration_records ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []expiration.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
