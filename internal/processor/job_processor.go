package processor

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"shenanigigs/jobstore/internal/errors"
	"shenanigigs/jobstore/internal/models"
	"shenanigigs/jobstore/internal/telemetry"
	"shenanigigs/jobstore/internal/validation"
)

// JobStore is the part of the repository the processor writes through.
type JobStore interface {
	CreateJob(ctx context.Context, job models.JobRecord) (*models.JobRecord, error)
	UpdateJob(ctx context.Context, id string, patch models.JobPatch) (*models.JobRecord, error)
	DeleteJob(ctx context.Context, id string) (bool, error)
}

type JobProcessor struct {
	logger    *zap.Logger
	store     JobStore
	validator *validation.Validator
	tracer    trace.Tracer
}

func NewJobProcessor(logger *zap.Logger, store JobStore, validator *validation.Validator) *JobProcessor {
	tracer := telemetry.GetTracer("shenanigigs/jobstore/processor")
	return &JobProcessor{
		logger:    logger,
		store:     store,
		validator: validator,
		tracer:    tracer,
	}
}

type updateMessage struct {
	ID    string          `json:"id"`
	Patch json.RawMessage `json:"patch"`
}

type deleteMessage struct {
	ID string `json:"id"`
}

// ProcessCreate decodes a job from raw JSON and stores it.
func (p *JobProcessor) ProcessCreate(ctx context.Context, data []byte) (*models.JobRecord, error) {
	ctx, span := p.tracer.Start(ctx, "ProcessCreate")
	defer span.End()

	job, err := p.validator.DecodeJob(data)
	if err != nil {
		telemetry.RecordError(span, err)
		p.logger.Warn("Rejected job", zap.Error(err))
		return nil, err
	}
	span.SetAttributes(telemetry.String("job.id", job.ID))

	created, err := p.store.CreateJob(ctx, job)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	p.logger.Info("Stored job", zap.String("job_id", created.ID))
	return created, nil
}

// ProcessUpdate applies a {"id", "patch"} message. A nil job with a nil
// error means no job has that id.
func (p *JobProcessor) ProcessUpdate(ctx context.Context, data []byte) (*models.JobRecord, error) {
	ctx, span := p.tracer.Start(ctx, "ProcessUpdate")
	defer span.End()

	var msg updateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		err = errors.InvalidInput("malformed update message", err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if msg.ID == "" {
		err := errors.InvalidInput("update message has no id", nil)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(msg.Patch) == 0 {
		err := errors.InvalidInput("update message has no patch", nil)
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(telemetry.String("job.id", msg.ID))

	patch, err := p.validator.DecodePatch(msg.Patch)
	if err != nil {
		telemetry.RecordError(span, err)
		p.logger.Warn("Rejected patch", zap.String("job_id", msg.ID), zap.Error(err))
		return nil, err
	}

	updated, err := p.store.UpdateJob(ctx, msg.ID, patch)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if updated == nil {
		p.logger.Info("Job to update not found", zap.String("job_id", msg.ID))
		return nil, nil
	}

	p.logger.Info("Updated job", zap.String("job_id", msg.ID))
	return updated, nil
}

// ProcessDelete applies an {"id"} message and reports whether a job was removed.
func (p *JobProcessor) ProcessDelete(ctx context.Context, data []byte) (bool, error) {
	ctx, span := p.tracer.Start(ctx, "ProcessDelete")
	defer span.End()

	var msg deleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		err = errors.InvalidInput("malformed delete message", err)
		telemetry.RecordError(span, err)
		return false, err
	}
	if msg.ID == "" {
		err := errors.InvalidInput("delete message has no id", nil)
		telemetry.RecordError(span, err)
		return false, err
	}
	span.SetAttributes(telemetry.String("job.id", msg.ID))

	deleted, err := p.store.DeleteJob(ctx, msg.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return false, err
	}

	p.logger.Info("Processed delete", zap.String("job_id", msg.ID), zap.Bool("deleted", deleted))
	return deleted, nil
}
