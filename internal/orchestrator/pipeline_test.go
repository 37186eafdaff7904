package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineMissingInputFailsFast(t *testing.T) {
	ran := false
	p := &Pipeline{
		Name: "test",
		Steps: []Step{
			{
				Name:   "needs-input",
				Inputs: []string{"absent"},
				Run: func(context.Context, Context) (StepResult, error) {
					ran = true
					return TextResult("ok"), nil
				},
			},
		},
	}

	_, err := p.Run(context.Background(), NewContext())
	require.Error(t, err)

	var failure *BranchStepFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "needs-input", failure.Step)
	assert.Contains(t, failure.Error(), "absent")
	assert.False(t, ran, "step must not run without its inputs")
}

func TestPipelineOutputsVisibleToAllLaterSteps(t *testing.T) {
	p := &Pipeline{
		Name: "test",
		Steps: []Step{
			{
				Name:    "first",
				Outputs: []string{"a"},
				Run: func(context.Context, Context) (StepResult, error) {
					return TextResult("from-first"), nil
				},
			},
			{
				Name:    "second",
				Inputs:  []string{"a"},
				Outputs: []string{"b"},
				Run: func(_ context.Context, c Context) (StepResult, error) {
					return StructuredResult(map[string]any{"b": c.GetString("a") + "+second"}), nil
				},
			},
			{
				// Reads the first step's output, not just the
				// immediately preceding one
				Name:    "third",
				Inputs:  []string{"a", "b"},
				Outputs: []string{"c"},
				Run: func(_ context.Context, c Context) (StepResult, error) {
					return TextResult(c.GetString("a") + "/" + c.GetString("b")), nil
				},
			},
		},
	}

	c := NewContext()
	result, err := p.Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "from-first/from-first+second", result.Text())
	assert.Equal(t, "from-first/from-first+second", c.GetString("c"))
}

func TestPipelineFailFastAbortsRemainingSteps(t *testing.T) {
	thirdRan := false
	p := &Pipeline{
		Name: "test",
		Steps: []Step{
			{
				Name: "first",
				Run: func(context.Context, Context) (StepResult, error) {
					return TextResult("ok"), nil
				},
			},
			{
				Name: "second",
				Run: func(context.Context, Context) (StepResult, error) {
					return StepResult{}, errors.New("boom")
				},
			},
			{
				Name: "third",
				Run: func(context.Context, Context) (StepResult, error) {
					thirdRan = true
					return TextResult("ok"), nil
				},
			},
		},
	}

	_, err := p.Run(context.Background(), NewContext())
	require.Error(t, err)

	var failure *BranchStepFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "second", failure.Step)
	assert.False(t, thirdRan)
}

func TestPipelineMissingDeclaredOutputFails(t *testing.T) {
	p := &Pipeline{
		Name: "test",
		Steps: []Step{
			{
				Name:    "claims-output",
				Outputs: []string{"x", "y"},
				Run: func(context.Context, Context) (StepResult, error) {
					// Structured result without the declared "y" key
					return StructuredResult(map[string]any{"x": 1}), nil
				},
			},
		},
	}

	_, err := p.Run(context.Background(), NewContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"y"`)
}

func TestEmailPipelinesDeclareHeaderInputs(t *testing.T) {
	generator := &stubGenerator{}
	deps, _, _, _, _ := testDeps(&stubClassifier{}, generator)

	tests := []struct {
		name     string
		pipeline *Pipeline
		step     string
	}{
		{"no-action summarize", noActionPipeline(deps), "summarize-record"},
		{"actionable-task draft", actionableTaskPipeline(deps), "draft-reply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Everything the step needs except the subject header.
			c := NewContext()
			c.Set(KeyMailID, "m1")
			c.Set(KeyUserID, int64(1))
			c.Set(KeyBody, "body")
			c.Set(KeySender, "a@b.com")

			_, err := tt.pipeline.Run(context.Background(), c)
			require.Error(t, err)

			var failure *BranchStepFailure
			require.ErrorAs(t, err, &failure)
			assert.Equal(t, tt.step, failure.Step)
			assert.Contains(t, failure.Error(), KeySubject)
		})
	}
}
