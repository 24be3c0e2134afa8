// Package prompts assembles LLM prompts from externally stored
// template fragments with variable substitution.
package prompts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/clinsight-inc/clinsight-engine/pkg/fewshot"
)

// Kind identifies a prompt template family.
type Kind string

const (
	KindReportGeneration     Kind = "report_generation"
	KindRecipeRecommendation Kind = "recipe_recommendation"
	KindNL2SQL               Kind = "nl2sql"
	KindSchemaChatbot        Kind = "schema_chatbot"
)

// Shared fragment names under prompts/shared.
const (
	sharedSQLRules         = "spark_sql_rules"
	sharedOutputFormat     = "output_format"
	sharedSchemaFormatting = "schema_formatting"
)

// Message is one turn of a chatbot conversation.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Assembler loads prompt fragments from a directory tree and performs
// {{NAME}} variable substitution. Shared fragments are cached after
// first load.
type Assembler struct {
	dir string

	mu          sync.RWMutex
	sharedCache map[string]string
}

// NewAssembler creates an Assembler rooted at dir.
func NewAssembler(dir string) *Assembler {
	return &Assembler{
		dir:         dir,
		sharedCache: make(map[string]string),
	}
}

// ClearCache drops cached shared fragments. Useful when editing
// fragments during development.
func (a *Assembler) ClearCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sharedCache = make(map[string]string)
}

func (a *Assembler) loadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("prompt fragment not found: %w", err)
	}
	return string(data), nil
}

func (a *Assembler) shared(name string) (string, error) {
	a.mu.RLock()
	cached, ok := a.sharedCache[name]
	a.mu.RUnlock()
	if ok {
		return cached, nil
	}

	content, err := a.loadFile(filepath.Join(a.dir, "shared", name+".txt"))
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.sharedCache[name] = content
	a.mu.Unlock()
	return content, nil
}

func (a *Assembler) systemAndTemplate(kind Kind) (string, string, error) {
	dir := filepath.Join(a.dir, string(kind))
	system, err := a.loadFile(filepath.Join(dir, "system.txt"))
	if err != nil {
		return "", "", err
	}
	template, err := a.loadFile(filepath.Join(dir, "user_template.txt"))
	if err != nil {
		return "", "", err
	}
	return system, template, nil
}

// Examples loads the stored few-shot bank for a prompt kind. Kinds
// without an examples.json return an empty slice.
func (a *Assembler) Examples(kind Kind) ([]fewshot.Example, error) {
	path := filepath.Join(a.dir, string(kind), "examples.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read examples for %s: %w", kind, err)
	}
	var examples []fewshot.Example
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("parse examples for %s: %w", kind, err)
	}
	return examples, nil
}

// substitute replaces {{NAME}} placeholders with the given values.
func substitute(template string, variables map[string]string) string {
	result := template
	for name, value := range variables {
		result = strings.ReplaceAll(result, "{{"+name+"}}", value)
	}
	return result
}

// formatExamples serializes examples as numbered question/SQL/
// explanation blocks. An empty set collapses to an empty string so the
// surrounding template tolerates a blank section.
func formatExamples(examples []fewshot.Example) string {
	if len(examples) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n## Few-Shot 예시\n\n")
	b.WriteString("다음 예시들을 참고하여 쿼리를 작성하세요:\n\n")
	for i, ex := range examples {
		fmt.Fprintf(&b, "### 예시 %d\n", i+1)
		fmt.Fprintf(&b, "**질문:** %s\n\n", ex.Question)
		fmt.Fprintf(&b, "**SQL:**\n```sql\n%s\n```\n\n", ex.SQL)
		if ex.Explanation != "" {
			fmt.Fprintf(&b, "**설명:** %s\n\n", ex.Explanation)
		}
	}
	return b.String()
}

// schemaSection wraps retrieved schema text with the shared formatting
// guidance.
func (a *Assembler) schemaSection(schemaInfo string) (string, error) {
	formatting, err := a.shared(sharedSchemaFormatting)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`## 데이터베이스 스키마 정보 (RAG-Enhanced)

%s

### 제공된 스키마
---
%s
---
`, formatting, schemaInfo), nil
}

// NL2SQL assembles the natural-language-to-SQL generation prompt.
func (a *Assembler) NL2SQL(userQuery, schemaContext string, examples []fewshot.Example) (string, error) {
	system, template, err := a.systemAndTemplate(KindNL2SQL)
	if err != nil {
		return "", err
	}

	rules, err := a.shared(sharedSQLRules)
	if err != nil {
		return "", err
	}
	outputFormat, err := a.shared(sharedOutputFormat)
	if err != nil {
		return "", err
	}

	user := substitute(template, map[string]string{
		"SCHEMA_CONTEXT":    schemaContext,
		"EXAMPLES":          formatExamples(examples),
		"SPARK_SQL_RULES":   rules,
		"USER_QUERY":        userQuery,
		"OUTPUT_VALIDATION": outputFormat,
	})

	return system + "\n\n---\n\n" + user, nil
}

// Refinement assembles the SQL refinement prompt. It carries the
// previous SQL and the refinement instruction verbatim and directs the
// model to emit a complete replacement query.
func (a *Assembler) Refinement(originalQuery, currentSQL, refinementRequest, schemaContext, diseaseHints string, examples []fewshot.Example) (string, error) {
	system, _, err := a.systemAndTemplate(KindNL2SQL)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "### 📊 스키마 정보\n%s\n", schemaContext)
	if len(examples) > 0 {
		fmt.Fprintf(&b, "\n### 💡 Few-shot 예시\n%s\n", formatExamples(examples))
	}
	b.WriteString("\n---\n\n## 🔄 SQL 개선 요청\n\n")
	fmt.Fprintf(&b, "**원래 요청:**\n%s\n\n", originalQuery)
	fmt.Fprintf(&b, "**현재 생성된 SQL:**\n```sql\n%s\n```\n\n", currentSQL)
	fmt.Fprintf(&b, "**사용자 개선 요청:**\n%s\n", refinementRequest)
	if diseaseHints != "" {
		fmt.Fprintf(&b, "\n%s\n", diseaseHints)
	}
	b.WriteString(`
---

## 🎯 개선 지침

1. **현재 SQL을 기반**으로 사용자의 개선 요청을 반영하세요
2. **기존 로직은 유지**하되, 요청된 변경 사항만 적용하세요
3. **질병 코드 힌트**가 제공된 경우 반드시 활용하세요
4. **전체 SQL을 다시 생성**하세요 (부분 수정이 아님)

응답 형식 (JSON):
` + "```json" + `
{
  "sql": "개선된 전체 SQL 쿼리 (Spark SQL)",
  "analysis": {
    "required_tables": ["테이블1", "테이블2"],
    "key_conditions": ["조건1", "조건2"],
    "explanation": "개선 내용 설명"
  }
}
` + "```" + `
`)

	return b.String(), nil
}

// RecipeRecommendation assembles the recipe recommendation prompt.
func (a *Assembler) RecipeRecommendation(diseaseName, recipeList, schemaInfo string, targetCount int) (string, error) {
	system, template, err := a.systemAndTemplate(KindRecipeRecommendation)
	if err != nil {
		return "", err
	}

	outputFormat, err := a.shared(sharedOutputFormat)
	if err != nil {
		return "", err
	}
	schemaSection, err := a.schemaSection(schemaInfo)
	if err != nil {
		return "", err
	}

	user := substitute(template, map[string]string{
		"DISEASE_NAME":      diseaseName,
		"SCHEMA_INFO":       schemaSection,
		"TARGET_COUNT":      strconv.Itoa(targetCount),
		"RECIPE_LIST":       recipeList,
		"OUTPUT_VALIDATION": outputFormat,
	})

	return system + "\n\n---\n\n" + user, nil
}

// ReportGeneration assembles the report generation prompt.
// mandatoryRecipes is optional and collapses to an empty section.
func (a *Assembler) ReportGeneration(userQuery, recipeList, schemaInfo, mandatoryRecipes string) (string, error) {
	system, template, err := a.systemAndTemplate(KindReportGeneration)
	if err != nil {
		return "", err
	}

	examples, err := a.Examples(KindReportGeneration)
	if err != nil {
		return "", err
	}

	rules, err := a.shared(sharedSQLRules)
	if err != nil {
		return "", err
	}
	outputFormat, err := a.shared(sharedOutputFormat)
	if err != nil {
		return "", err
	}
	schemaSection, err := a.schemaSection(schemaInfo)
	if err != nil {
		return "", err
	}

	mandatorySection := ""
	if mandatoryRecipes != "" {
		mandatorySection = fmt.Sprintf(`## 필수 포함 레시피

사용자가 다음 레시피를 **반드시 포함**하도록 명시했습니다.

---
%s
---
`, mandatoryRecipes)
	}

	user := substitute(template, map[string]string{
		"MANDATORY_RECIPES_SECTION": mandatorySection,
		"SPARK_SQL_RULES":           rules,
		"SCHEMA_INFO":               schemaSection,
		"USER_QUERY":                userQuery,
		"RECIPE_LIST":               recipeList,
		"OUTPUT_VALIDATION":         outputFormat,
		"EXAMPLES":                  formatExamples(examples),
	})

	return system + "\n\n---\n\n" + user, nil
}

// SchemaChatbot assembles the schema Q&A prompt with a bounded window
// of conversation history.
func (a *Assembler) SchemaChatbot(question, schemaContext string, history []Message) (string, error) {
	system, template, err := a.systemAndTemplate(KindSchemaChatbot)
	if err != nil {
		return "", err
	}

	historyText := ""
	if len(history) > 0 {
		// Last 4 messages only.
		start := 0
		if len(history) > 4 {
			start = len(history) - 4
		}
		var b strings.Builder
		b.WriteString("\n**이전 대화:**\n")
		for _, msg := range history[start:] {
			role := "어시스턴트"
			if msg.Role == "user" {
				role = "사용자"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
		}
		b.WriteString("\n")
		historyText = b.String()
	}

	user := substitute(template, map[string]string{
		"SCHEMA_CONTEXT":       schemaContext,
		"CONVERSATION_HISTORY": historyText,
		"USER_QUESTION":        question,
	})

	return system + "\n\n---\n\n" + user, nil
}
