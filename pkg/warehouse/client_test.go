package warehouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(&Config{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warehouse credentials are required")
}

func TestClassifyErrorMessage(t *testing.T) {
	elapsed := 3 * time.Second

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", errors.New("request timed out"), "the SQL warehouse may be stopped"},
		{"timestamp", errors.New("CANNOT_PARSE_TIMESTAMP: bad value"), "TRY_TO_DATE()"},
		{"group by", errors.New("MISSING_GROUP_BY in query"), "GROUP BY clause"},
		{"aggregation", errors.New("MISSING_AGGREGATION somewhere"), "GROUP BY clause"},
		{"identifier", errors.New("INVALID_IDENTIFIER `컬럼`"), "column reference error"},
		{"passthrough", errors.New("some other failure"), "some other failure"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, ClassifyErrorMessage(tc.err, elapsed), tc.want)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))
}

func TestMockExecutorTracksCalls(t *testing.T) {
	mock := NewMockExecutor()

	result := mock.Execute(context.Background(), "SELECT 1", 10)
	assert.True(t, result.Success)

	mock.ExecuteFunc = func(ctx context.Context, sqlQuery string, maxRows int) *QueryResult {
		return &QueryResult{Success: false, ErrorMessage: "boom"}
	}
	result = mock.Execute(context.Background(), "SELECT 2", 10)
	assert.False(t, result.Success)

	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, mock.ExecuteCalls)

	mock.Reset()
	assert.Empty(t, mock.ExecuteCalls)
}
