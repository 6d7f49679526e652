package pipeline

import (
	"context"

	"github.com/electwix/sqlast/internal/bind"
)

// Hooks are optional callbacks invoked at fixed points of Run. A hook that
// returns an error aborts the run with that error.
type Hooks struct {
	// BeforeParse receives the input names about to be parsed.
	BeforeParse func(ctx context.Context, paths []string) error

	// AfterParse receives the results of every input, in input order.
	AfterParse func(ctx context.Context, results []FileResult) error

	// BeforeWrite receives the encoded output.
	BeforeWrite func(ctx context.Context, output []byte) error

	// AfterReplay runs after a successful replay.
	AfterReplay func(ctx context.Context, stats bind.ReplayStats) error

	// AfterRun is called last, also when an earlier stage failed. Its error
	// is returned only if the run itself succeeded.
	AfterRun func(ctx context.Context, summary Summary) error
}

// Chain combines two Hooks, calling h's hooks first, then other's hooks.
// If a hook in h returns an error, other's hook is not called.
func (h Hooks) Chain(other Hooks) Hooks {
	return Hooks{
		BeforeParse: chainHook(h.BeforeParse, other.BeforeParse),
		AfterParse:  chainHook(h.AfterParse, other.AfterParse),
		BeforeWrite: chainHook(h.BeforeWrite, other.BeforeWrite),
		AfterReplay: chainHook(h.AfterReplay, other.AfterReplay),
		AfterRun:    chainHook(h.AfterRun, other.AfterRun),
	}
}

func chainHook[T any](first, second func(context.Context, T) error) func(context.Context, T) error {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	return func(ctx context.Context, arg T) error {
		if err := first(ctx, arg); err != nil {
			return err
		}
		return second(ctx, arg)
	}
}
