package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openelig/eligibility-tracker/internal/entity"
)

// RecordStore is the persistence boundary for extraction records. Records are
// append-only: a record is written once and never mutated.
type RecordStore interface {
	Append(ctx context.Context, rec *entity.ExtractionRecord) error
	List(ctx context.Context, from, to *time.Time) ([]*entity.ExtractionRecord, error)
}

type postgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore returns a RecordStore backed by the extraction_records
// table.
func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &postgresStore{pool: pool, logger: logger}
}

// EnsureSchema creates the extraction_records table when missing. Columns are
// derived from the record's canonical field list so the table always matches
// the fixed schema.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	cols := make([]string, 0, len(entity.FieldNames()))
	for _, name := range entity.FieldNames() {
		cols = append(cols, fmt.Sprintf("%s text NOT NULL DEFAULT ''", name))
	}
	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS extraction_records (
			id uuid PRIMARY KEY,
			%s,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, strings.Join(cols, ",\n\t\t\t"))
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create extraction_records: %w", err)
	}
	return nil
}

func (s *postgresStore) Append(ctx context.Context, rec *entity.ExtractionRecord) error {
	names := entity.FieldNames()
	values := rec.Values()

	placeholders := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	args = append(args, uuid.New())
	placeholders = append(placeholders, "$1")
	for i, v := range values {
		args = append(args, v)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
	}

	stmt := fmt.Sprintf(
		"INSERT INTO extraction_records (id, %s) VALUES (%s)",
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
	)
	if _, err := s.pool.Exec(ctx, stmt, args...); err != nil {
		s.logger.Error("failed to append record", "member_id", rec.MemberID, "error", err)
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *postgresStore) List(ctx context.Context, from, to *time.Time) ([]*entity.ExtractionRecord, error) {
	stmt := fmt.Sprintf(
		"SELECT %s FROM extraction_records WHERE 1=1",
		strings.Join(entity.FieldNames(), ", "),
	)
	var args []any
	if from != nil {
		args = append(args, *from)
		stmt += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		stmt += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	stmt += " ORDER BY created_at"

	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		s.logger.Error("failed to list records", "error", err)
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []*entity.ExtractionRecord
	for rows.Next() {
		rec := &entity.ExtractionRecord{}
		if err := rows.Scan(
			&rec.Timestamp, &rec.Sentiment, &rec.MemberID, &rec.FirstName, &rec.LastName,
			&rec.DOB, &rec.Address, &rec.City, &rec.State, &rec.ZipCode,
			&rec.AddressStatus, &rec.MemberStatus, &rec.StartDate, &rec.EndDate,
			&rec.HealthPlan, &rec.ContractType, &rec.Codes, &rec.ChangeRequest,
			&rec.RawText, &rec.UserIdentifier, &rec.ExtractedBy, &rec.ExtractionTimestamp,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
