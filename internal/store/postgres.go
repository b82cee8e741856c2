package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sqlc-dev/pqtype"

	"leadrouter/internal/model"
)

// PostgresStore keeps processed leads in the leads table created by
// db/migrations. Snapshots of the request, branch, car and enrichment are
// stored as JSONB.
type PostgresStore struct {
	DB *sql.DB
}

// NewPostgres creates a store on a shared *sql.DB with pooling.
func NewPostgres(database *sql.DB) *PostgresStore {
	return &PostgresStore{DB: database}
}

const leadColumns = `original_lead, branch_info, car_info, enrichment, score, priority, assigned_to, status`

func (s *PostgresStore) AddLead(ctx context.Context, lead model.ProcessedLead) error {
	original, err := json.Marshal(lead.OriginalLead)
	if err != nil {
		return fmt.Errorf("encode lead request: %w", err)
	}
	branch, err := json.Marshal(lead.BranchInfo)
	if err != nil {
		return fmt.Errorf("encode branch: %w", err)
	}
	car, err := nullJSON(lead.CarInfo)
	if err != nil {
		return fmt.Errorf("encode car: %w", err)
	}
	enrichment, err := nullJSON(lead.Enrichment)
	if err != nil {
		return fmt.Errorf("encode enrichment: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	_, err = s.DB.ExecContext(ctx, `
INSERT INTO leads (id, email, phone, branch_id, `+leadColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id,
		lead.OriginalLead.Email,
		lead.OriginalLead.Phone,
		lead.BranchInfo.BranchID,
		original,
		branch,
		car,
		enrichment,
		lead.Score,
		string(lead.Priority),
		lead.AssignedTo,
		lead.Status,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLeadByEmail(ctx context.Context, email string) (model.ProcessedLead, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT `+leadColumns+` FROM leads
WHERE email <> '' AND lower(email) = lower($1)
ORDER BY created_at, id LIMIT 1`, email)
	return scanLead(row)
}

func (s *PostgresStore) GetLeadByPhone(ctx context.Context, phone string) (model.ProcessedLead, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT `+leadColumns+` FROM leads
WHERE phone <> '' AND phone = $1
ORDER BY created_at, id LIMIT 1`, phone)
	return scanLead(row)
}

func (s *PostgresStore) ListLeads(ctx context.Context) ([]model.ProcessedLead, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []model.ProcessedLead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (model.ProcessedLead, error) {
	var (
		lead       model.ProcessedLead
		original   []byte
		branch     []byte
		car        pqtype.NullRawMessage
		enrichment pqtype.NullRawMessage
		priority   string
	)
	err := row.Scan(&original, &branch, &car, &enrichment, &lead.Score, &priority, &lead.AssignedTo, &lead.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProcessedLead{}, ErrNotFound
	}
	if err != nil {
		return model.ProcessedLead{}, fmt.Errorf("scan lead: %w", err)
	}
	lead.Priority = model.Priority(priority)

	if err := json.Unmarshal(original, &lead.OriginalLead); err != nil {
		return model.ProcessedLead{}, fmt.Errorf("decode lead request: %w", err)
	}
	if err := json.Unmarshal(branch, &lead.BranchInfo); err != nil {
		return model.ProcessedLead{}, fmt.Errorf("decode branch: %w", err)
	}
	if car.Valid {
		lead.CarInfo = &model.CarModel{}
		if err := json.Unmarshal(car.RawMessage, lead.CarInfo); err != nil {
			return model.ProcessedLead{}, fmt.Errorf("decode car: %w", err)
		}
	}
	if enrichment.Valid {
		lead.Enrichment = &model.LeadEnrichment{}
		if err := json.Unmarshal(enrichment.RawMessage, lead.Enrichment); err != nil {
			return model.ProcessedLead{}, fmt.Errorf("decode enrichment: %w", err)
		}
	}
	return lead, nil
}

// nullJSON encodes v as a nullable JSONB value; nil pointers become SQL
// NULL.
func nullJSON[T any](v *T) (pqtype.NullRawMessage, error) {
	if v == nil {
		return pqtype.NullRawMessage{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}
