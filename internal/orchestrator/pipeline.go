package orchestrator

import (
	"context"
	"fmt"
	"log"
)

// StepFunc executes one pipeline step against the shared context
type StepFunc func(ctx context.Context, c Context) (StepResult, error)

// Step is one unit of a branch pipeline. Inputs are the context keys
// the step reads; they must be present before the step runs. Outputs
// are the keys the step's result contributes to the context.
type Step struct {
	Name    string
	Inputs  []string
	Outputs []string
	Run     StepFunc
}

// Pipeline is an ordered sequence of steps sharing one context. Step
// failure aborts the run immediately.
type Pipeline struct {
	Name  string
	Steps []Step
}

// Run executes the steps in order. Before each step its declared input
// keys are checked; after each step the result is merged into the
// context: every key of a structured result, or the step's first
// declared output key for a text result. Declared outputs missing
// after the merge abort the run.
func (p *Pipeline) Run(ctx context.Context, c Context) (StepResult, error) {
	var last StepResult

	for _, step := range p.Steps {
		for _, key := range step.Inputs {
			if !c.Has(key) {
				return StepResult{}, &BranchStepFailure{
					Pipeline: p.Name,
					Step:     step.Name,
					Err:      fmt.Errorf("missing input %q", key),
				}
			}
		}

		result, err := step.Run(ctx, c)
		if err != nil {
			if failure, ok := err.(*BranchStepFailure); ok {
				return StepResult{}, failure
			}
			return StepResult{}, &BranchStepFailure{Pipeline: p.Name, Step: step.Name, Err: err}
		}

		if result.IsStructured() {
			c.Merge(result.Structured())
		} else if len(step.Outputs) > 0 {
			c.Set(step.Outputs[0], result.Text())
		}

		for _, key := range step.Outputs {
			if !c.Has(key) {
				return StepResult{}, &BranchStepFailure{
					Pipeline: p.Name,
					Step:     step.Name,
					Err:      fmt.Errorf("step produced no output %q", key),
				}
			}
		}

		log.Printf("[Orchestrator] %s: step %s done", p.Name, step.Name)
		last = result
	}

	return last, nil
}
