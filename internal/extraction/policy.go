package extraction

import (
	"context"

	"atsmatch/internal/ai"
	"atsmatch/internal/types"
)

// Failure records one failed strategy attempt
type Failure struct {
	Strategy string
	Attempt  int
	Kind     ai.FailureKind
	Err      error
}

// Policy drives strategies in order, trying each up to Attempts times,
// and stops at the first success
type Policy struct {
	Strategies []Strategy
	Attempts   int
}

// Outcome is the result of running a policy
type Outcome struct {
	Document types.ResumeDocument
	Strategy string // empty when every strategy failed
	Index    int    // position of the successful strategy
	Failures []Failure
}

// OK reports whether some strategy succeeded
func (o Outcome) OK() bool {
	return o.Strategy != ""
}

// Run executes the policy against input. A cancelled context ends the
// policy early with the failures collected so far.
func (p Policy) Run(ctx context.Context, c ai.Completer, input string) Outcome {
	attempts := max(p.Attempts, 1)

	var out Outcome
	for i, s := range p.Strategies {
		for attempt := 1; attempt <= attempts; attempt++ {
			if err := ctx.Err(); err != nil {
				out.Failures = append(out.Failures, Failure{Strategy: s.Name, Attempt: attempt, Kind: ai.KindOf(err), Err: err})
				return out
			}
			res := s.Run(ctx, c, input)
			if res.OK() {
				out.Document = res.Value
				out.Strategy = s.Name
				out.Index = i
				return out
			}
			out.Failures = append(out.Failures, Failure{Strategy: s.Name, Attempt: attempt, Kind: res.Kind, Err: res.Err})
		}
	}
	return out
}
