package chatbot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinsight-inc/clinsight-engine/pkg/llm"
	"github.com/clinsight-inc/clinsight-engine/pkg/prompts"
	"github.com/clinsight-inc/clinsight-engine/pkg/schema"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestService(t *testing.T, mock *llm.MockClient) *Service {
	t.Helper()
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "schema.csv")
	writeFile(t, catalogPath, `table_name,column_name,localized_name,description,data_type,nullable,keywords,category,importance
basic_treatment,res_disease_name,질병명,질병 명칭,string,Y,질병 질환,treatment,high
prescribed_drug,drug_name,약품명,약품 명칭,string,Y,약 약품 처방,prescription,high
`)
	catalog, err := schema.LoadCatalog(catalogPath, zap.NewNop())
	require.NoError(t, err)

	promptDir := filepath.Join(dir, "prompts")
	writeFile(t, filepath.Join(promptDir, "schema_chatbot", "system.txt"), "SYSTEM")
	writeFile(t, filepath.Join(promptDir, "schema_chatbot", "user_template.txt"),
		"{{SCHEMA_CONTEXT}}\n{{CONVERSATION_HISTORY}}\n질문: {{USER_QUESTION}}")

	return NewService(catalog, prompts.NewAssembler(promptDir), mock, zap.NewNop())
}

func TestAskThreadsHistory(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, prompt, system string) (string, error) {
		return "  처방 정보는 prescribed_drug에 있습니다.  ", nil
	}
	s := newTestService(t, mock)

	answer, err := s.Ask(context.Background(), "처방 정보는 어디에 있나요?")
	require.NoError(t, err)
	assert.Equal(t, "처방 정보는 prescribed_drug에 있습니다.", answer)
	require.Len(t, s.History(), 2)

	// The second question's prompt carries the first exchange.
	_, err = s.Ask(context.Background(), "질병 정보는요?")
	require.NoError(t, err)
	assert.Contains(t, mock.LastPrompt, "처방 정보는 어디에 있나요?")
	assert.Contains(t, mock.LastPrompt, "처방 정보는 prescribed_drug에 있습니다.")
	assert.Len(t, s.History(), 4)
}

func TestAskPromptContainsSchema(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, prompt, system string) (string, error) {
		return "답변", nil
	}
	s := newTestService(t, mock)

	_, err := s.Ask(context.Background(), "약품 컬럼을 알려주세요")
	require.NoError(t, err)
	assert.Contains(t, mock.LastPrompt, "drug_name")
}

func TestAskClientErrorLeavesHistoryUntouched(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, prompt, system string) (string, error) {
		return "", errors.New("boom")
	}
	s := newTestService(t, mock)

	_, err := s.Ask(context.Background(), "질문")
	require.Error(t, err)
	assert.Empty(t, s.History())
}

func TestReset(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, prompt, system string) (string, error) {
		return "답변", nil
	}
	s := newTestService(t, mock)

	_, err := s.Ask(context.Background(), "질문")
	require.NoError(t, err)
	require.NotEmpty(t, s.History())

	s.Reset()
	assert.Empty(t, s.History())
}
