package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRecordErrorMarksSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "CreateJob")
	RecordError(span, errors.New("insert failed"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "insert failed", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
}

func TestAttributeHelpers(t *testing.T) {
	assert.Equal(t, "job.id", string(String("job.id", "x").Key))
	assert.Equal(t, int64(3), Int("page", 3).Value.AsInt64())
	assert.True(t, Bool("deleted", true).Value.AsBool())
}
