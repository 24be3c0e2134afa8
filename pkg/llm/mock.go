package llm

import "context"

// MockClient is a configurable mock for testing LLM-driven components.
// Set the function field to control behavior in tests.
type MockClient struct {
	// GenerateFunc is called when Generate is invoked.
	// If nil, returns empty string and nil error.
	GenerateFunc func(ctx context.Context, prompt string, systemMessage string) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification
	GenerateCalls int
	LastPrompt    string
	LastSystem    string
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{ModelName: "mock-model"}
}

// Generate implements Client.
func (m *MockClient) Generate(ctx context.Context, prompt string, systemMessage string) (string, error) {
	m.GenerateCalls++
	m.LastPrompt = prompt
	m.LastSystem = systemMessage
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, systemMessage)
	}
	return "", nil
}

// Model implements Client.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Reset clears call tracking.
func (m *MockClient) Reset() {
	m.GenerateCalls = 0
	m.LastPrompt = ""
	m.LastSystem = ""
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
