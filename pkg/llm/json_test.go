package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPayloadFenced(t *testing.T) {
	payload, err := ExtractPayload("```json\n{\"sql\": \"SELECT 1\"}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql": "SELECT 1"}`, payload)
}

func TestExtractPayloadUntaggedFence(t *testing.T) {
	payload, err := ExtractPayload("```\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, payload)
}

func TestExtractPayloadUnfencedObject(t *testing.T) {
	payload, err := ExtractPayload(`결과입니다: {"sql": "SELECT 1"} 이상입니다.`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql": "SELECT 1"}`, payload)
}

func TestExtractPayloadArray(t *testing.T) {
	payload, err := ExtractPayload(`[1, 2, 3]`)
	require.NoError(t, err)
	assert.Equal(t, "[1, 2, 3]", payload)
}

func TestExtractPayloadStripsThinkTags(t *testing.T) {
	payload, err := ExtractPayload("<think>생각 중 {괄호}</think>\n{\"a\": 1}")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, payload)
}

func TestExtractPayloadHonorsStringLiterals(t *testing.T) {
	// Braces inside string values must not unbalance the scan.
	payload, err := ExtractPayload(`{"sql": "SELECT '{}' AS x", "n": 1}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql": "SELECT '{}' AS x", "n": 1}`, payload)
}

func TestExtractPayloadErrors(t *testing.T) {
	_, err := ExtractPayload("")
	assert.ErrorContains(t, err, "empty response")

	_, err = ExtractPayload("그냥 텍스트입니다")
	assert.ErrorContains(t, err, "no JSON payload")

	_, err = ExtractPayload(`{"unbalanced": 1`)
	assert.Error(t, err)
}

func TestParseResponse(t *testing.T) {
	type shape struct {
		SQL string `json:"sql"`
	}

	parsed, err := ParseResponse[shape]("```json\n{\"sql\": \"SELECT 1\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", parsed.SQL)

	_, err = ParseResponse[shape]("```json\n{not json}\n```")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal response payload")
}
