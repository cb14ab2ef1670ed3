package repository

import (
	"context"
	stderrors "errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"shenanigigs/jobstore/internal/database/schema"
	"shenanigigs/jobstore/internal/errors"
	"shenanigigs/jobstore/internal/models"
	"shenanigigs/jobstore/internal/telemetry"
	"shenanigigs/jobstore/internal/validation"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type JobRepository struct {
	db        DBTX
	validator *validation.Validator
	schema    *schema.Initializer
	logger    *zap.Logger
	tracer    trace.Tracer
}

func NewJobRepository(db DBTX, validator *validation.Validator, logger *zap.Logger) *JobRepository {
	return &JobRepository{
		db:        db,
		validator: validator,
		schema:    schema.NewInitializer(db, logger),
		logger:    logger,
		tracer:    telemetry.GetTracer("shenanigigs/jobstore/repository"),
	}
}

var returningColumns = "RETURNING " + strings.Join(jobColumns, ", ")

// InitializeTable creates the jobs table and its indexes if they are
// missing. Existing rows are never touched.
func (r *JobRepository) InitializeTable(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "JobRepository.InitializeTable")
	defer span.End()

	if err := r.schema.EnsureJobsTable(ctx); err != nil {
		return r.fail(span, "initialize jobs table", "", err)
	}
	return nil
}

// CreateJob validates and inserts a new job, returning it as stored.
func (r *JobRepository) CreateJob(ctx context.Context, job models.JobRecord) (*models.JobRecord, error) {
	ctx, span := r.tracer.Start(ctx, "JobRepository.CreateJob")
	defer span.End()
	span.SetAttributes(telemetry.String("job.id", job.ID))

	if err := r.validator.ValidateJob(job); err != nil {
		return nil, r.fail(span, "create job", job.ID, err)
	}

	row, err := toRow(job)
	if err != nil {
		return nil, r.fail(span, "create job", job.ID, errors.Internal("failed to encode job", err))
	}

	query, args, err := psql.Insert(schema.JobsTable).
		Columns(jobColumns...).
		Values(row.values()...).
		Suffix(returningColumns).
		ToSql()
	if err != nil {
		return nil, r.fail(span, "create job", job.ID, errors.Internal("failed to build insert", err))
	}

	created, err := r.queryJob(ctx, query, args...)
	if err != nil {
		return nil, r.fail(span, "create job", job.ID, err)
	}

	r.logger.Debug("created job", zap.String("job_id", created.ID))
	return created, nil
}

// GetJob returns nil, nil when no job has the given id.
func (r *JobRepository) GetJob(ctx context.Context, id string) (*models.JobRecord, error) {
	ctx, span := r.tracer.Start(ctx, "JobRepository.GetJob")
	defer span.End()
	span.SetAttributes(telemetry.String("job.id", id))

	query, args, err := psql.Select(jobColumns...).
		From(schema.JobsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, r.fail(span, "get job", id, errors.Internal("failed to build select", err))
	}

	job, err := r.queryJob(ctx, query, args...)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(span, "get job", id, err)
	}
	return job, nil
}

// UpdateJob merges patch over the stored job, validates the result and
// persists it. It returns nil, nil when no job has the given id, and
// leaves the stored job unchanged when the merged result is invalid. An
// empty patch returns the stored job without writing.
//
// The read and the write are separate statements with no version check,
// so two concurrent updates of the same job resolve to whichever write
// lands last.
func (r *JobRepository) UpdateJob(ctx context.Context, id string, patch models.JobPatch) (*models.JobRecord, error) {
	ctx, span := r.tracer.Start(ctx, "JobRepository.UpdateJob")
	defer span.End()
	span.SetAttributes(telemetry.String("job.id", id))

	current, err := r.GetJob(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	if patch.IsEmpty() {
		return current, nil
	}

	merged := patch.Apply(*current)
	if err := r.validator.ValidateJob(merged); err != nil {
		return nil, r.fail(span, "update job", id, err)
	}

	row, err := toRow(merged)
	if err != nil {
		return nil, r.fail(span, "update job", id, errors.Internal("failed to encode job", err))
	}

	query, args, err := psql.Update(schema.JobsTable).
		SetMap(row.setMap()).
		Where(sq.Eq{"id": id}).
		Suffix(returningColumns).
		ToSql()
	if err != nil {
		return nil, r.fail(span, "update job", id, errors.Internal("failed to build update", err))
	}

	updated, err := r.queryJob(ctx, query, args...)
	if stderrors.Is(err, pgx.ErrNoRows) {
		// Deleted between the read and the write.
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(span, "update job", id, err)
	}

	r.logger.Debug("updated job", zap.String("job_id", id))
	return updated, nil
}

// DeleteJob reports whether a job was removed.
func (r *JobRepository) DeleteJob(ctx context.Context, id string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "JobRepository.DeleteJob")
	defer span.End()
	span.SetAttributes(telemetry.String("job.id", id))

	query, args, err := psql.Delete(schema.JobsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, r.fail(span, "delete job", id, errors.Internal("failed to build delete", err))
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, r.fail(span, "delete job", id, err)
	}

	deleted := tag.RowsAffected() > 0
	span.SetAttributes(telemetry.Bool("job.deleted", deleted))
	return deleted, nil
}

// SearchJobs returns one page of jobs matching every supplied filter,
// newest first, together with the total number of matches.
func (r *JobRepository) SearchJobs(ctx context.Context, filters models.SearchFilters, page, limit int) (*models.SearchResult, error) {
	ctx, span := r.tracer.Start(ctx, "JobRepository.SearchJobs")
	defer span.End()

	q, err := buildSearchQuery(filters, page, limit)
	if err != nil {
		return nil, r.fail(span, "search jobs", "", errors.Internal("failed to build search", err))
	}
	span.SetAttributes(
		telemetry.String("search.category", filters.Category),
		telemetry.String("search.expertise", filters.Expertise),
		telemetry.Int("search.page", q.page),
		telemetry.Int("search.limit", q.limit),
	)

	rows, err := r.db.Query(ctx, q.pageSQL, q.pageArgs...)
	if err != nil {
		return nil, r.fail(span, "search jobs", "", err)
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[searchRow])
	if err != nil {
		return nil, r.fail(span, "search jobs", "", err)
	}

	jobs := make([]models.JobRecord, 0, len(results))
	total := 0
	for _, res := range results {
		job, err := fromRow(res.jobRow)
		if err != nil {
			return nil, r.fail(span, "search jobs", res.ID, errors.Storage("corrupt job row", err))
		}
		jobs = append(jobs, job)
		total = int(res.TotalCount)
	}

	// The window count is only available when the page has rows.
	if len(results) == 0 && q.offset > 0 {
		var count int64
		if err := r.db.QueryRow(ctx, q.countSQL, q.countArgs...).Scan(&count); err != nil {
			return nil, r.fail(span, "count jobs", "", err)
		}
		total = int(count)
	}

	span.SetAttributes(telemetry.Int("search.total", total))
	return &models.SearchResult{Jobs: jobs, Total: total}, nil
}

func (r *JobRepository) queryJob(ctx context.Context, query string, args ...any) (*models.JobRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[jobRow])
	if err != nil {
		return nil, err
	}
	job, err := fromRow(row)
	if err != nil {
		return nil, errors.Storage("corrupt job row", err)
	}
	return &job, nil
}

// fail records err on the span, classifies driver errors and logs the
// outcome. Errors that are already classified pass through unchanged.
func (r *JobRepository) fail(span trace.Span, op, id string, err error) error {
	if errors.TypeOf(err) == "" {
		if isUniqueViolation(err) {
			err = errors.DuplicateKey(id, err)
		} else {
			err = errors.Storage("failed to "+op, err)
		}
	}
	telemetry.RecordError(span, err)

	fields := []zap.Field{zap.String("operation", op), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("job_id", id))
	}
	switch errors.TypeOf(err) {
	case errors.ErrTypeValidation, errors.ErrTypeDuplicateKey:
		r.logger.Warn("job rejected", fields...)
	default:
		r.logger.Error("job store operation failed", fields...)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
