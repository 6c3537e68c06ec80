package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestDocKind(t *testing.T) {
	assert.Equal(t, "pdf", Request{DocType: "pdf", Type: "doc"}.DocKind())
	assert.Equal(t, "webpage", Request{Type: "webpage"}.DocKind())
	assert.Equal(t, KindDoc, Request{}.DocKind())
}

func TestRequestSource(t *testing.T) {
	assert.Equal(t, "/tmp/a.txt", Request{Path: "/tmp/a.txt", URL: "http://x"}.Source())
	assert.Equal(t, "http://x", Request{URL: "http://x"}.Source())
	assert.Empty(t, Request{}.Source())
}

func TestResponseEnvelopeShape(t *testing.T) {
	data, err := json.Marshal(WithExists(false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"exists":false}`, string(data))

	data, err = json.Marshal(Failure(ErrInvalidSession))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"invalid session_id"}`, string(data))
}

func TestCodeEntityIsFunction(t *testing.T) {
	assert.True(t, CodeEntity{EntityType: "function"}.IsFunction())
	assert.False(t, CodeEntity{EntityType: "class"}.IsFunction())
}
