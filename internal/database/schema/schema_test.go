package schema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingExecer struct {
	statements []string
	failOn     int
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.statements = append(r.statements, sql)
	if r.failOn > 0 && len(r.statements) == r.failOn {
		return pgconn.CommandTag{}, errors.New("permission denied")
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func TestEnsureJobsTableRunsEveryStatementInOrder(t *testing.T) {
	db := &recordingExecer{}
	initializer := NewInitializer(db, zaptest.NewLogger(t))

	require.NoError(t, initializer.EnsureJobsTable(context.Background()))

	require.Len(t, db.statements, len(JobsTableStatements))
	for i, stmt := range JobsTableStatements {
		assert.Equal(t, stmt.SQL, db.statements[i])
	}
}

func TestJobsTableStatementsAreIdempotent(t *testing.T) {
	for _, stmt := range JobsTableStatements {
		t.Run(stmt.Description, func(t *testing.T) {
			assert.Contains(t, stmt.SQL, "IF NOT EXISTS")
			assert.NotContains(t, strings.ToUpper(stmt.SQL), "DROP")
		})
	}
}

func TestJobsTableColumns(t *testing.T) {
	create := JobsTableStatements[0].SQL

	for _, column := range []string{
		"id TEXT PRIMARY KEY",
		"long_description TEXT NOT NULL",
		"skills TEXT[] NOT NULL",
		"attachments TEXT[],",
		"questions TEXT[],",
		"weekly_hours TEXT,",
		"client_history JSONB NOT NULL",
	} {
		assert.Contains(t, create, column)
	}
}

func TestEnsureJobsTableStopsOnFailure(t *testing.T) {
	db := &recordingExecer{failOn: 2}
	initializer := NewInitializer(db, zaptest.NewLogger(t))

	err := initializer.EnsureJobsTable(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobsTableStatements[1].Description)
	assert.Len(t, db.statements, 2)
}
