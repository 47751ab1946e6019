package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusinessProfileSerializesWithoutNulls(t *testing.T) {
	raw, err := json.Marshal(NewBusinessProfile())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	for _, key := range []string{"strengths", "challenges", "opportunities"} {
		v, ok := m[key]
		require.True(t, ok, key)
		assert.IsType(t, []any{}, v, key)
	}
	assert.IsType(t, map[string]any{}, m["missing_data_assumptions"])
}

func TestValidSubmissionStatus(t *testing.T) {
	assert.True(t, ValidSubmissionStatus(SubmissionStatusSubmitted))
	assert.True(t, ValidSubmissionStatus(SubmissionStatusProcessed))
	assert.True(t, ValidSubmissionStatus(SubmissionStatusFailed))
	assert.False(t, ValidSubmissionStatus("queued"))
	assert.False(t, ValidSubmissionStatus(""))
}
