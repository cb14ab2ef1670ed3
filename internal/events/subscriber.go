package events

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"shenanigigs/jobstore/internal/errors"
	"shenanigigs/jobstore/internal/models"
	"shenanigigs/jobstore/internal/processor"
	"shenanigigs/jobstore/internal/telemetry"
)

const (
	SubjectCreate = "jobs.create"
	SubjectUpdate = "jobs.update"
	SubjectDelete = "jobs.delete"
)

// Reply is sent back when a message carries a reply subject.
type Reply struct {
	OK      bool              `json:"ok"`
	Job     *models.JobRecord `json:"job,omitempty"`
	Deleted *bool             `json:"deleted,omitempty"`
	Error   *ReplyError       `json:"error,omitempty"`
}

type ReplyError struct {
	Type       errors.ErrorType   `json:"type"`
	Message    string             `json:"message"`
	Violations []errors.Violation `json:"violations,omitempty"`
}

type Handler struct {
	logger       *zap.Logger
	nc           *nats.Conn
	tracer       trace.Tracer
	jobProcessor *processor.JobProcessor
	queueGroup   string
	subs         []*nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, tracer trace.Tracer, jobProcessor *processor.JobProcessor, queueGroup string) *Handler {
	return &Handler{
		logger:       logger,
		nc:           nc,
		tracer:       tracer,
		jobProcessor: jobProcessor,
		queueGroup:   queueGroup,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	handlers := map[string]nats.MsgHandler{
		SubjectCreate: h.handleCreate,
		SubjectUpdate: h.handleUpdate,
		SubjectDelete: h.handleDelete,
	}

	for subject, handler := range handlers {
		sub, err := h.nc.QueueSubscribe(subject, h.queueGroup, handler)
		if err != nil {
			h.unsubscribe()
			return fmt.Errorf("subscribe to %s: %w", subject, err)
		}
		h.subs = append(h.subs, sub)
	}

	h.logger.Info("Registered NATS subscriptions",
		zap.String("queue_group", h.queueGroup),
		zap.Int("subjects", len(h.subs)))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.unsubscribe()
		},
	})

	return nil
}

func (h *Handler) unsubscribe() error {
	var firstErr error
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.subs = nil
	return firstErr
}

func (h *Handler) handleCreate(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleCreate")
	defer span.End()

	job, err := h.jobProcessor.ProcessCreate(ctx, msg.Data)
	h.finish(span, msg, newReply(job, nil, err), err)
}

func (h *Handler) handleUpdate(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleUpdate")
	defer span.End()

	job, err := h.jobProcessor.ProcessUpdate(ctx, msg.Data)
	h.finish(span, msg, newReply(job, nil, err), err)
}

func (h *Handler) handleDelete(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleDelete")
	defer span.End()

	deleted, err := h.jobProcessor.ProcessDelete(ctx, msg.Data)
	h.finish(span, msg, newReply(nil, &deleted, err), err)
}

func (h *Handler) finish(span trace.Span, msg *nats.Msg, reply Reply, err error) {
	if err != nil {
		telemetry.RecordError(span, err)
		h.logger.Error("Failed to process job message",
			zap.Error(err),
			zap.String("subject", msg.Subject),
		)
	} else {
		h.logger.Debug("Processed job message",
			zap.String("subject", msg.Subject),
		)
	}

	if msg.Reply == "" {
		return
	}

	data, err := json.Marshal(reply)
	if err != nil {
		h.logger.Error("Failed to encode reply", zap.Error(err), zap.String("subject", msg.Subject))
		return
	}
	if err := msg.Respond(data); err != nil {
		h.logger.Error("Failed to send reply", zap.Error(err), zap.String("subject", msg.Subject))
	}
}

func newReply(job *models.JobRecord, deleted *bool, err error) Reply {
	if err != nil {
		var domainErr *errors.DomainError
		replyErr := &ReplyError{Type: errors.ErrTypeInternal, Message: err.Error()}
		if stderrors.As(err, &domainErr) {
			replyErr.Type = domainErr.Type
			replyErr.Message = domainErr.Message
			replyErr.Violations = domainErr.Violations
		}
		return Reply{Error: replyErr}
	}
	return Reply{OK: true, Job: job, Deleted: deleted}
}
