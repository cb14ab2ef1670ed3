package events

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shenanigigs/jobstore/internal/errors"
	"shenanigigs/jobstore/internal/models"
)

func TestNewReplySuccess(t *testing.T) {
	job := &models.JobRecord{ID: "job-1"}

	reply := newReply(job, nil, nil)
	assert.True(t, reply.OK)
	assert.Equal(t, job, reply.Job)
	assert.Nil(t, reply.Deleted)
	assert.Nil(t, reply.Error)
}

func TestNewReplyDelete(t *testing.T) {
	deleted := false

	data, err := json.Marshal(newReply(nil, &deleted, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true, "deleted": false}`, string(data))
}

func TestNewReplyValidationError(t *testing.T) {
	err := errors.Validation([]errors.Violation{{Field: "proposals", Message: "must be an integer"}})

	data, marshalErr := json.Marshal(newReply(nil, nil, fmt.Errorf("process: %w", err)))
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{
		"ok": false,
		"error": {
			"type": "VALIDATION",
			"message": "validation failed: proposals: must be an integer",
			"violations": [{"field": "proposals", "message": "must be an integer"}]
		}
	}`, string(data))
}

func TestNewReplyUnclassifiedError(t *testing.T) {
	reply := newReply(nil, nil, assert.AnError)
	require.NotNil(t, reply.Error)
	assert.False(t, reply.OK)
	assert.Equal(t, errors.ErrTypeInternal, reply.Error.Type)
	assert.Equal(t, assert.AnError.Error(), reply.Error.Message)
}

func TestDecodeReplyRoundTrip(t *testing.T) {
	err := errors.Validation([]errors.Violation{{Field: "title", Message: "is required"}})
	data, marshalErr := json.Marshal(newReply(nil, nil, err))
	require.NoError(t, marshalErr)

	reply, decodeErr := decodeReply(data)
	require.NoError(t, decodeErr)
	assert.False(t, reply.OK)
	assert.False(t, reply.Found())

	rebuilt := reply.Err()
	require.Error(t, rebuilt)
	assert.True(t, errors.IsValidation(rebuilt))
	assert.Equal(t, []errors.Violation{{Field: "title", Message: "is required"}}, errors.ViolationsOf(rebuilt))
}

func TestDecodeReplySuccess(t *testing.T) {
	reply, err := decodeReply([]byte(`{"ok": true, "job": {"id": "job-1"}}`))
	require.NoError(t, err)
	assert.NoError(t, reply.Err())
	assert.True(t, reply.Found())
	assert.Equal(t, "job-1", reply.Job.ID)

	notFound, err := decodeReply([]byte(`{"ok": true}`))
	require.NoError(t, err)
	assert.False(t, notFound.Found())
}

func TestDecodeReplyMalformed(t *testing.T) {
	_, err := decodeReply([]byte(`not json`))
	assert.Equal(t, errors.ErrTypeInternal, errors.TypeOf(err))
}

func TestUpdateRequestKeepsRawPatch(t *testing.T) {
	data, err := json.Marshal(updateRequest{ID: "job-1", Patch: json.RawMessage(`{"weeklyHours":null}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "job-1", "patch": {"weeklyHours": null}}`, string(data))
}
