package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type Statement struct {
	Description string
	SQL         string
}

type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Initializer struct {
	db     Execer
	logger *zap.Logger
}

func NewInitializer(db Execer, logger *zap.Logger) *Initializer {
	return &Initializer{
		db:     db,
		logger: logger,
	}
}

// EnsureJobsTable is safe to call on every start; it never drops or
// rewrites existing rows.
func (i *Initializer) EnsureJobsTable(ctx context.Context) error {
	return i.Apply(ctx, JobsTableStatements)
}

func (i *Initializer) Apply(ctx context.Context, statements []Statement) error {
	for _, stmt := range statements {
		if _, err := i.db.Exec(ctx, stmt.SQL); err != nil {
			return fmt.Errorf("failed to %s: %w", stmt.Description, err)
		}

		i.logger.Debug("applied schema statement",
			zap.String("description", stmt.Description))
	}

	i.logger.Info("schema is up to date",
		zap.String("table", JobsTable),
		zap.Int("statements", len(statements)))

	return nil
}
