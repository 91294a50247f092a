package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/estatebot/internal/conversation"
	"github.com/m3rciful/estatebot/internal/i18n"
)

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeResult) RowsAffected() (int64, error) { return 1, nil }

// fakeDB captures the bound statement instead of talking to Postgres.
type fakeDB struct {
	query string
	args  []any
	err   error
}

func (f *fakeDB) DriverName() string { return "postgres" }

func (f *fakeDB) Rebind(q string) string { return sqlx.Rebind(sqlx.DOLLAR, q) }

func (f *fakeDB) BindNamed(q string, arg any) (string, []any, error) {
	return sqlx.BindNamed(sqlx.DOLLAR, q, arg)
}

func (f *fakeDB) ExecContext(_ context.Context, q string, args ...any) (sql.Result, error) {
	f.query, f.args = q, args
	if f.err != nil {
		return nil, f.err
	}
	return fakeResult{}, nil
}

func (f *fakeDB) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("not supported")
}

func (f *fakeDB) QueryxContext(context.Context, string, ...any) (*sqlx.Rows, error) {
	return nil, errors.New("not supported")
}

func (f *fakeDB) QueryRowxContext(context.Context, string, ...any) *sqlx.Row {
	return nil
}

func submission() conversation.Submission {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return conversation.Submission{
		ID:            uuid.MustParse("6f1c7f3e-8a51-4b8e-9d55-2b0c1f0c9a11"),
		UserID:        1001,
		Language:      i18n.AZ,
		ApartmentType: conversation.ApartmentBuilding,
		Answers: []conversation.Answer{
			{Field: conversation.FieldLanguage, Value: "az"},
			{Field: conversation.FieldUserName, Value: "Anar"},
			{Field: conversation.FieldApartmentType, Value: "building"},
		},
		StartedAt:   started,
		CompletedAt: started.Add(3 * time.Minute),
	}
}

func TestRecordBindsSubmission(t *testing.T) {
	db := &fakeDB{}
	repo := New(db)

	require.NoError(t, repo.Record(context.Background(), submission()))
	assert.Contains(t, db.query, "INSERT INTO listing_submissions")
	assert.Contains(t, db.query, "$7")
	require.Len(t, db.args, 7)
	assert.Equal(t, "6f1c7f3e-8a51-4b8e-9d55-2b0c1f0c9a11", db.args[0])
	assert.Equal(t, int64(1001), db.args[1])
	assert.Equal(t, "az", db.args[2])
	assert.Equal(t, "building", db.args[3])

	var answers []answerJSON
	require.NoError(t, json.Unmarshal([]byte(db.args[4].(string)), &answers))
	assert.Equal(t, []answerJSON{
		{Field: "language", Value: "az"},
		{Field: "user_name", Value: "Anar"},
		{Field: "apartment_type", Value: "building"},
	}, answers)
}

func TestRecordWrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	repo := New(&fakeDB{err: boom})

	err := repo.Record(context.Background(), submission())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "6f1c7f3e")
}

func TestRepositoryIsRecorder(t *testing.T) {
	var _ conversation.Recorder = New(&fakeDB{})
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(Migrations, MigrationsDir+"/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	data, err := fs.ReadFile(Migrations, names[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "listing_submissions")
	assert.Contains(t, string(data), "JSONB")
}
