package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTaxonomyError(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, Validation("Validation failed!", []FieldError{
		{Field: "status", Message: "Status cannot be empty!"},
	}))

	assert.Equal(t, 422, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Message string       `json:"message"`
		Data    []FieldError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed!", body.Message)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "status", body.Data[0].Field)
}

func TestWriteUnclassifiedBecomes500(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, errors.New("gocql: no hosts available"))

	assert.Equal(t, 500, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// internal detail must not leak through the boundary
	assert.Equal(t, "internal server error", body["message"])
	assert.NotContains(t, body, "data")
}

func TestWriteWrappedError(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, fmt.Errorf("resolving post: %w", NotFound("Post not found!")))
	assert.Equal(t, 404, rec.Code)
}
