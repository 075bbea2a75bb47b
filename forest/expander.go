package forest

import (
	"context"
	"errors"
	"log/slog"
)

var errNoResolver = errors.New("stub has no resolver")

// Observer is notified about every stub the expander meets.
type Observer interface {
	StubResolved()
	StubDropped()
	StubFailed()
}

type noopObserver struct{}

func (noopObserver) StubResolved() {}
func (noopObserver) StubDropped()  {}
func (noopObserver) StubFailed()   {}

// Result is the outcome of expanding one forest.
type Result struct {
	Utterances []string
	Resolved   int
	Dropped    int
	Failed     int
}

// Expander flattens forests, resolving stubs under a budget.
type Expander struct {
	logger   *slog.Logger
	budget   Budget
	policy   ChargePolicy
	observer Observer
}

func NewExpander(logger *slog.Logger, budget Budget, policy ChargePolicy, observer Observer) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == ChargeInvalid {
		policy = ChargeShared
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Expander{
		logger:   logger,
		budget:   budget,
		policy:   policy,
		observer: observer,
	}
}

type allowance struct {
	used int
}

// frame is one forest being walked. Frames replace call-stack recursion so
// arbitrarily long pagination chains cannot overflow the stack.
type frame struct {
	items     Forest
	next      int
	allowance *allowance
}

// Flatten returns the utterances of items in depth-first, left-to-right order.
// Stub failures are logged and never abort the walk.
func (e *Expander) Flatten(ctx context.Context, items Forest) []string {
	return e.Expand(ctx, items).Utterances
}

func (e *Expander) Expand(ctx context.Context, items Forest) Result {
	res := Result{Utterances: make([]string, 0, len(items))}
	stack := []*frame{{items: items, allowance: &allowance{}}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.items) {
			stack = stack[:len(stack)-1]
			continue
		}
		item := top.items[top.next]
		top.next++

		switch it := item.(type) {
		case Node:
			res.Utterances = append(res.Utterances, NormalizeText(it.Body))
			if len(it.Replies) > 0 {
				stack = append(stack, &frame{items: it.Replies, allowance: top.allowance})
			}

		case Stub:
			if e.exhausted(top.allowance) {
				res.Dropped++
				e.observer.StubDropped()
				e.logger.Debug("expansion budget exhausted, dropping stub", "stub_id", it.ID, "count", it.Count, "budget", e.budget.String())
				continue
			}

			resolved, err := resolve(ctx, it)
			if err != nil {
				res.Failed++
				e.observer.StubFailed()
				e.logger.Warn("failed to resolve stub", "stub_id", it.ID, "parent_id", it.ParentID, "error", err)
				continue
			}

			top.allowance.used++
			res.Resolved++
			e.observer.StubResolved()

			scope := top.allowance
			if e.policy == ChargePerLevel {
				scope = &allowance{}
			}
			if len(resolved) > 0 {
				stack = append(stack, &frame{items: resolved, allowance: scope})
			}
		}
	}

	return res
}

func (e *Expander) exhausted(a *allowance) bool {
	return e.budget.Bounded() && a.used >= e.budget.Max()
}

func resolve(ctx context.Context, stub Stub) (Forest, error) {
	if stub.Resolve == nil {
		return nil, errNoResolver
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stub.Resolve(ctx)
}
