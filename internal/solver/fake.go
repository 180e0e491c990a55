package solver

import (
	"context"
	"sync"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
)

// Fake is an in-memory Solver scripted per plan. Unscripted plans return an
// infeasible result.
type Fake struct {
	mu      sync.Mutex
	results map[scheduling.SolverPlan]*Result
	errs    map[scheduling.SolverPlan]error
	calls   []Options
	block   chan struct{}
}

func NewFake() *Fake {
	return &Fake{
		results: map[scheduling.SolverPlan]*Result{},
		errs:    map[scheduling.SolverPlan]error{},
	}
}

func (f *Fake) On(plan scheduling.SolverPlan, r *Result) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[plan] = r
	return f
}

func (f *Fake) Fail(plan scheduling.SolverPlan, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[plan] = err
	return f
}

// Block makes every Solve wait until release is closed or ctx ends.
func (f *Fake) Block(release chan struct{}) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = release
	return f
}

func (f *Fake) Solve(ctx context.Context, in Input, opts Options) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	block := f.block
	r, err := f.results[opts.Plan], f.errs[opts.Plan]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if r == nil {
		return &Result{Feasible: boolPtr(false), Status: "INFEASIBLE", Assignments: []Assignment{}}, nil
	}
	cp := *r
	return &cp, nil
}

// Calls returns the options of every Solve so far, in order.
func (f *Fake) Calls() []Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Options(nil), f.calls...)
}

func (f *Fake) Plans() []scheduling.SolverPlan {
	calls := f.Calls()
	out := make([]scheduling.SolverPlan, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Plan)
	}
	return out
}
