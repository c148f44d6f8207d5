package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kotae/internal/knowledge"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/tools"
)

func testDocs() *knowledge.Snapshot {
	s := knowledge.NewStore()
	s.Replace([]knowledge.Entry{
		{Title: "doc1", Content: "Python is great for readability and libraries."},
		{Title: "doc2", Content: "Go has goroutines. Go compiles fast. Cats are cute."},
	})
	return s.Snapshot()
}

func stepTypes(steps []models.Step) []models.StepType {
	out := make([]models.StepType, len(steps))
	for i, s := range steps {
		out[i] = s.Type
	}
	return out
}

func TestRun_NoKeywordSingleTurn(t *testing.T) {
	model := llm.NewScriptedProvider("Python is a programming language.")
	a := New(model)

	res, err := a.Run(context.Background(), "What is Python?", testDocs())
	require.NoError(t, err)
	assert.Equal(t, []models.StepType{models.StepThought, models.StepResult}, stepTypes(res.Steps))
	assert.Equal(t, "Python is a programming language.", res.Answer)
	assert.Equal(t, 1, res.Iterations)
	assert.Len(t, model.Calls(), 1)
	assert.True(t, res.Completed())
}

func TestRun_SearchThenFinalAnswer(t *testing.T) {
	model := llm.NewScriptedProvider(
		"I should search for: Python",
		"Final Answer: Python is great for readability.",
	)
	a := New(model)

	res, err := a.Run(context.Background(), "Why use Python?", testDocs())
	require.NoError(t, err)
	assert.Equal(t, []models.StepType{
		models.StepThought, models.StepAction, models.StepObservation,
		models.StepThought, models.StepResult,
	}, stepTypes(res.Steps))
	assert.Contains(t, res.Steps[1].Content, `"Python"`)
	assert.Contains(t, res.Steps[2].Content, "[doc1]")
	assert.NotContains(t, res.Steps[2].Content, "[doc2]")
	assert.Equal(t, "Final Answer: Python is great for readability.", res.Answer)

	calls := model.Calls()
	require.Len(t, calls, 2)
	second := calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, llm.RoleSystem, second[0].Role)
	assert.Equal(t, "Why use Python?", second[1].Content)
	assert.Equal(t, llm.RoleAssistant, second[2].Role)
	assert.True(t, strings.HasPrefix(second[3].Content, "Tool result:\n[doc1]"))
	assert.True(t, strings.HasSuffix(second[3].Content, "\n\nContinue your analysis."))
}

func TestRun_AnalyzeBeforeRetrieveUsesAllDocuments(t *testing.T) {
	model := llm.NewScriptedProvider("Let me analyze the material.", "Answer: done")
	a := New(model)

	res, err := a.Run(context.Background(), "goroutines", testDocs())
	require.NoError(t, err)
	require.Len(t, res.Steps, 5)
	assert.Equal(t, models.StepObservation, res.Steps[2].Type)
	assert.Equal(t, "Key findings:\nGo has goroutines", res.Steps[2].Content)
}

func TestRun_AnalyzeUsesLatestObservation(t *testing.T) {
	model := llm.NewScriptedProvider(`search("Go")`, "now extract the facts", "Answer: fast")
	a := New(model)

	res, err := a.Run(context.Background(), "compiles", testDocs())
	require.NoError(t, err)
	require.Len(t, res.Steps, 8)
	retrieved := res.Steps[2].Content
	assert.Equal(t, tools.Analyze(retrieved, "compiles"), res.Steps[5].Content)
	assert.Equal(t, "Key findings:\nGo compiles fast", res.Steps[5].Content)
}

func TestRun_NoMatchSentinel(t *testing.T) {
	model := llm.NewScriptedProvider(`retrieve("rust")`, "Final answer: not covered")
	res, err := New(model).Run(context.Background(), "rust?", testDocs())
	require.NoError(t, err)
	assert.Equal(t, tools.NoDocumentsFound, res.Steps[2].Content)
}

func TestRun_StepBudgetNeverExceeded(t *testing.T) {
	for max := 1; max <= 7; max++ {
		model := llm.NewScriptedProvider("I will search again")
		a := New(model, WithMaxIterations(max))
		res, err := a.Run(context.Background(), "Python", testDocs())
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Steps), 2*max+1, "max=%d", max)
		assert.LessOrEqual(t, len(model.Calls()), max, "max=%d", max)
		assert.Equal(t, models.StepResult, res.Steps[len(res.Steps)-1].Type, "max=%d", max)
		assert.Equal(t, "I will search again", res.Answer)
	}
}

func TestRun_LastTurnForcesResult(t *testing.T) {
	model := llm.NewScriptedProvider("search for: Python")
	res, err := New(model, WithMaxIterations(1)).Run(context.Background(), "q", testDocs())
	require.NoError(t, err)
	assert.Equal(t, []models.StepType{models.StepThought, models.StepResult}, stepTypes(res.Steps))
}

func TestRun_ModelError(t *testing.T) {
	boom := errors.New("quota exceeded")
	model := llm.NewScriptedProvider("unused").FailOn(0, boom)

	res, err := New(model).Run(context.Background(), "What is Python?", testDocs())
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, models.StepThought, res.Steps[0].Type)
	assert.Equal(t, "Error during processing: quota exceeded", res.Steps[0].Content)
	assert.Empty(t, res.Answer)
	assert.ErrorIs(t, res.Err, boom)
	assert.False(t, res.Completed())
	assert.Equal(t, FallbackAnswer, res.DisplayAnswer())
}

func TestRun_ModelErrorMidRun(t *testing.T) {
	boom := errors.New("timeout")
	model := llm.NewScriptedProvider("search for: Python").FailOn(1, boom)

	res, err := New(model).Run(context.Background(), "Python", testDocs())
	require.NoError(t, err)
	require.Len(t, res.Steps, 4)
	assert.Equal(t, "Error during processing: timeout", res.Steps[3].Content)
	assert.Empty(t, res.Answer)
}

func TestRun_InvalidInput(t *testing.T) {
	_, err := New(nil).Run(context.Background(), "q", testDocs())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(llm.NewScriptedProvider("x")).Run(context.Background(), "   ", testDocs())
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRun_EmptyDocuments(t *testing.T) {
	model := llm.NewScriptedProvider("search", "Final Answer: nothing found")
	res, err := New(model).Run(context.Background(), "anything", knowledge.NewStore().Snapshot())
	require.NoError(t, err)
	assert.Equal(t, tools.NoDocumentsFound, res.Steps[2].Content)
}

func TestRun_Observer(t *testing.T) {
	model := llm.NewScriptedProvider("search for: Go", "answer: yes")
	var seen []models.Step
	res, err := New(model).Run(context.Background(), "Go", testDocs(), WithStepObserver(func(s models.Step) {
		seen = append(seen, s)
	}))
	require.NoError(t, err)
	assert.Equal(t, res.Steps, seen)
}

func TestRun_Deterministic(t *testing.T) {
	run := func() []models.Step {
		model := llm.NewScriptedProvider("search for: Go", "analyze", "Final Answer: ok")
		res, err := New(model).Run(context.Background(), "Go fast", testDocs())
		require.NoError(t, err)
		return res.Steps
	}
	a, b := run(), run()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Type, b[i].Type)
		assert.Equal(t, a[i].Content, b[i].Content)
	}
}

func TestRun_SystemPromptOption(t *testing.T) {
	model := llm.NewScriptedProvider("ok")
	_, err := New(model, WithSystemPrompt("custom")).Run(context.Background(), "q", testDocs())
	require.NoError(t, err)
	assert.Equal(t, "custom", model.Calls()[0][0].Content)
}

func TestExtractSearchPhrase(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{`retrieve("machine learning")`, "machine learning"},
		{`I'll call search(goroutines) now`, "goroutines"},
		{`Let me search the documents for "Go channels"`, "Go channels"},
		{"Thought: I need more.\nsearch for: Python libraries\nThen answer.", "Python libraries"},
		{"Retrieve: cats.", "cats"},
		{"I should search the documents.", "original query"},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSearchPhrase(tt.reply, "original query"))
		})
	}
}
