package warehouse

import "context"

// MockExecutor is a configurable mock for testing warehouse-driven
// code paths. Set ExecuteFunc to control behavior.
type MockExecutor struct {
	// ExecuteFunc is called when Execute is invoked. If nil, returns a
	// successful empty result.
	ExecuteFunc func(ctx context.Context, sqlQuery string, maxRows int) *QueryResult

	// Call tracking for verification
	ExecuteCalls []string
}

// NewMockExecutor creates a new mock executor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// Execute implements Executor.
func (m *MockExecutor) Execute(ctx context.Context, sqlQuery string, maxRows int) *QueryResult {
	m.ExecuteCalls = append(m.ExecuteCalls, sqlQuery)
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, sqlQuery, maxRows)
	}
	return &QueryResult{Success: true}
}

// Reset clears call tracking.
func (m *MockExecutor) Reset() {
	m.ExecuteCalls = nil
}

// Ensure MockExecutor implements Executor at compile time.
var _ Executor = (*MockExecutor)(nil)
