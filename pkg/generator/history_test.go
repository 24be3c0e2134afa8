package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecordAndLatest(t *testing.T) {
	h := NewHistory()

	h.Record("질문", "SELECT 1", EntryGenerate)
	h.Record("질문", "SELECT 1 LIMIT 10", EntryRefine)

	require.Len(t, h.Entries(), 2)

	// Latest wins for a repeated query; there is no merging.
	latest := h.Latest("질문")
	require.NotNil(t, latest)
	assert.Equal(t, "SELECT 1 LIMIT 10", latest.SQL)
	assert.Equal(t, EntryRefine, latest.Kind)
}

func TestHistoryDeduplicatesIdenticalSQL(t *testing.T) {
	h := NewHistory()

	h.Record("질문", "SELECT 1", EntryGenerate)
	h.Record("질문", "SELECT 1", EntryGenerate)

	assert.Len(t, h.Entries(), 1)
}

func TestHistoryLatestUnknownQuery(t *testing.T) {
	assert.Nil(t, NewHistory().Latest("없는 질문"))
}

func TestExtractKeywords(t *testing.T) {
	keywords := ExtractKeywords("고혈압 환자의 지역별 처방 TOP 10")
	assert.Equal(t, []string{"환자", "처방", "지역", "TOP"}, keywords)

	assert.Empty(t, ExtractKeywords("전혀 무관한 문장"))
}
