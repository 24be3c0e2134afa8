package recipes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeRecipe(t *testing.T, dir, category, name, content string) {
	t.Helper()
	categoryDir := filepath.Join(dir, category)
	require.NoError(t, os.MkdirAll(categoryDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(categoryDir, name), []byte(content), 0o644))
}

func TestLoadIndex(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "pool", "patient_count.yaml", `
name: patient_count
description: 환자 수 집계
tags: [count]
parameters:
  - name: disease_keyword
    type: string
`)
	writeRecipe(t, dir, "profile", "age_profile.yaml", `
name: age_profile
description: 연령 프로파일
`)

	idx, err := LoadIndex(dir, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, idx.All(), 2)

	r := idx.ByName("patient_count")
	require.NotNil(t, r)
	assert.Equal(t, "pool", r.Category)
	assert.Equal(t, filepath.Join(dir, "pool", "patient_count.sql"), r.SQLPath)
	require.Len(t, r.Parameters, 1)
	assert.Equal(t, ParamString, r.Parameters[0].Type)
}

func TestLoadIndexCaseSensitiveLookup(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "pool", "patient_count.yaml", "name: patient_count\ndescription: d\n")

	idx, err := LoadIndex(dir, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, idx.ByName("patient_count"))
	assert.Nil(t, idx.ByName("Patient_Count"))
	assert.Nil(t, idx.ByName("PATIENT_COUNT"))
}

func TestLoadIndexSkipsInvalidMetadata(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "pool", "good.yaml", "name: good\ndescription: d\n")
	writeRecipe(t, dir, "pool", "broken.yaml", "name: [unclosed\n")

	idx, err := LoadIndex(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, idx.All(), 1)
}

func TestLoadIndexRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "pool", "a.yaml", "name: dup\ndescription: d\n")
	writeRecipe(t, dir, "profile", "b.yaml", "name: dup\ndescription: d\n")

	_, err := LoadIndex(dir, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate recipe name")
}

func TestLoadIndexNameDefaultsToFilename(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "pool", "from_filename.yaml", "description: d\n")

	idx, err := LoadIndex(dir, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, idx.ByName("from_filename"))
}

func TestLoadIndexParameterTypeDefault(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "pool", "r.yaml", `
name: r
description: d
parameters:
  - name: p
`)

	idx, err := LoadIndex(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ParamString, idx.ByName("r").Parameters[0].Type)
}

func TestByCategoryAndByTag(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "pool", "a.yaml", "name: a\ndescription: d\ntags: [core]\n")
	writeRecipe(t, dir, "profile", "b.yaml", "name: b\ndescription: d\ntags: [demographic]\n")

	idx, err := LoadIndex(dir, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, idx.ByCategory("pool"), 1)
	assert.Equal(t, "a", idx.ByCategory("pool")[0].Name)
	require.Len(t, idx.ByTag("demographic"), 1)
	assert.Equal(t, "b", idx.ByTag("demographic")[0].Name)
}

func TestDescribeAll(t *testing.T) {
	out := DescribeAll([]*Recipe{
		{Name: "a", Description: "첫 번째"},
		{Name: "b", Description: "두 번째"},
	})
	assert.Equal(t, "- a: 첫 번째\n- b: 두 번째", out)
}
