package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"shenanigigs/jobstore/internal/config"
	"shenanigigs/jobstore/internal/errors"
	"shenanigigs/jobstore/internal/telemetry"
)

var tracer = telemetry.GetTracer("shenanigigs/jobstore/events")

// Publisher sends job messages and waits for the handler's reply.
type Publisher interface {
	CreateJob(ctx context.Context, job json.RawMessage) (*Reply, error)
	UpdateJob(ctx context.Context, id string, patch json.RawMessage) (*Reply, error)
	DeleteJob(ctx context.Context, id string) (*Reply, error)
	Close()
}

type updateRequest struct {
	ID    string          `json:"id"`
	Patch json.RawMessage `json:"patch"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewPublisher(logger *zap.Logger, config *config.Config) (Publisher, error) {
	opts := []nats.Option{
		nats.Timeout(config.NATSConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(config.NATSURL, opts...)
	if err != nil {
		return nil, errors.Internal("connecting to NATS", err)
	}

	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}, nil
}

// CreateJob sends the job JSON as is; the handler does all validation.
func (p *natsPublisher) CreateJob(ctx context.Context, job json.RawMessage) (*Reply, error) {
	return p.request(ctx, SubjectCreate, job)
}

// UpdateJob takes the patch as raw JSON so that null can clear optional fields.
func (p *natsPublisher) UpdateJob(ctx context.Context, id string, patch json.RawMessage) (*Reply, error) {
	data, err := json.Marshal(updateRequest{ID: id, Patch: patch})
	if err != nil {
		return nil, errors.InvalidInput("encoding update request", err)
	}
	return p.request(ctx, SubjectUpdate, data)
}

func (p *natsPublisher) DeleteJob(ctx context.Context, id string) (*Reply, error) {
	data, err := json.Marshal(deleteRequest{ID: id})
	if err != nil {
		return nil, errors.Internal("encoding delete request", err)
	}
	return p.request(ctx, SubjectDelete, data)
}

func (p *natsPublisher) request(ctx context.Context, subject string, data []byte) (*Reply, error) {
	ctx, span := tracer.Start(ctx, "Request")
	defer span.End()

	span.SetAttributes(
		telemetry.String("nats.subject", subject),
		telemetry.Int("message.size", len(data)),
	)

	msg, err := p.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		telemetry.RecordError(span, err)
		p.logger.Error("failed to send job request",
			zap.String("subject", subject),
			zap.Error(err))
		return nil, errors.Internal("requesting "+subject, err)
	}

	reply, err := decodeReply(msg.Data)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	p.logger.Debug("received job reply",
		zap.String("subject", subject),
		zap.Bool("ok", reply.OK))
	return reply, nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

func decodeReply(data []byte) (*Reply, error) {
	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, errors.Internal("decoding reply", err)
	}
	return &reply, nil
}

// Err rebuilds the domain error carried by a failed reply.
func (r *Reply) Err() error {
	if r.OK || r.Error == nil {
		return nil
	}
	err := errors.New(r.Error.Type, r.Error.Message, nil)
	err.Violations = r.Error.Violations
	return err
}

// Found reports whether a successful update matched a stored job.
func (r *Reply) Found() bool {
	return r.OK && r.Job != nil
}
