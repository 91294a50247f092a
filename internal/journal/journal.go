// Package journal stores completed listing submissions in Postgres.
package journal

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/estatebot/core/logger"
	"github.com/m3rciful/estatebot/internal/conversation"
)

// Migrations holds the schema, applied at startup through core/database.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the .sql files.
const MigrationsDir = "migrations"

const insertSubmission = `
INSERT INTO listing_submissions (id, user_id, language, apartment_type, answers, started_at, created_at)
VALUES (:id, :user_id, :language, :apartment_type, :answers, :started_at, :created_at)`

const countSubmissions = `SELECT count(*) FROM listing_submissions`

type row struct {
	ID            string    `db:"id"`
	UserID        int64     `db:"user_id"`
	Language      string    `db:"language"`
	ApartmentType string    `db:"apartment_type"`
	Answers       string    `db:"answers"`
	StartedAt     time.Time `db:"started_at"`
	CreatedAt     time.Time `db:"created_at"`
}

type answerJSON struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Repository writes submissions through sqlx.
type Repository struct {
	db sqlx.ExtContext
}

// New wraps db. *sqlx.DB and *sqlx.Tx both qualify.
func New(db sqlx.ExtContext) *Repository {
	return &Repository{db: db}
}

// Record inserts one submission. Answers keep their dialogue order.
func (r *Repository) Record(ctx context.Context, s conversation.Submission) error {
	rec, err := toRow(s)
	if err != nil {
		return err
	}
	start := time.Now()
	if _, err := sqlx.NamedExecContext(ctx, r.db, insertSubmission, rec); err != nil {
		return fmt.Errorf("journal: insert %s: %w", rec.ID, err)
	}
	logger.LogEvent(ctx, logger.Journal, slog.LevelInfo, "journal.record",
		slog.String("status", "ok"),
		slog.String("submission_id", rec.ID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// Count returns how many submissions were recorded.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, r.db, &n, countSubmissions); err != nil {
		return 0, fmt.Errorf("journal: count: %w", err)
	}
	return n, nil
}

func toRow(s conversation.Submission) (row, error) {
	answers := make([]answerJSON, 0, len(s.Answers))
	for _, a := range s.Answers {
		answers = append(answers, answerJSON{Field: string(a.Field), Value: a.Value})
	}
	payload, err := json.Marshal(answers)
	if err != nil {
		return row{}, fmt.Errorf("journal: encode answers: %w", err)
	}
	return row{
		ID:            s.ID.String(),
		UserID:        s.UserID,
		Language:      string(s.Language),
		ApartmentType: string(s.ApartmentType),
		Answers:       string(payload),
		StartedAt:     s.StartedAt.UTC(),
		CreatedAt:     s.CompletedAt.UTC(),
	}, nil
}
