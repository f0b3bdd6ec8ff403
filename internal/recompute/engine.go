// Package recompute re-executes the part of a document that is out of
// date.
//
// A pass builds the dependency graph, sets cycle members and everything
// downstream of them aside, and runs every object that must execute plus
// its downstream closure in scheduler order. Objects touched while the pass
// runs are queued again, so a late change is never lost. A failing object
// is isolated: it keeps its touched state, stores its error, and its
// dependents are skipped, while unrelated objects still run.
package recompute

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/specialistvlad/featuregraph/internal/ctxlog"
	"github.com/specialistvlad/featuregraph/internal/depgraph"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/scheduler"
)

// DefaultMaxExecutions caps how often one object may execute in a single pass.
const DefaultMaxExecutions = 8

// Engine recomputes documents. One Engine may serve several documents; each
// document admits one pass at a time.
type Engine struct {
	maxExecutions int

	mu         sync.Mutex
	violations map[*object.Object]error
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxExecutions sets the per-object execution cap for one pass.
func WithMaxExecutions(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxExecutions = n
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxExecutions: DefaultMaxExecutions,
		violations:    make(map[*object.Object]error),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// pass holds the state of one Recompute call.
type pass struct {
	engine *Engine
	doc    *document.Document
	graph  *depgraph.Graph
	report *Report

	order   []int
	pos     []int
	blocked []bool // cycle members and their downstream
	failed  []bool // failed or skipped in this pass
	runs    []int
	queue   *scheduler.Queue // positions in order
}

// Recompute runs one pass over d. It returns ErrPassInProgress if d is
// already recomputing; when the caller is a computation of that running
// pass, the calling object also fails with *object.ReentrancyError.
// Per-object failures are reported in the Report, never as the returned
// error.
func (e *Engine) Recompute(ctx context.Context, d *document.Document) (*Report, error) {
	release, ok := d.TryBeginPass()
	if !ok {
		if o := runningObject(ctx); o != nil && o.Owner() == d && o.TestStatus(object.StatusRecomputing) {
			err := &object.ReentrancyError{Object: o.Name()}
			ctxlog.FromContext(ctx).Error("Rejected document recompute from a running object.", "object", o.Name())
			e.recordViolation(o, err)
			return nil, fmt.Errorf("%w: %w", ErrPassInProgress, err)
		}
		return nil, ErrPassInProgress
	}
	defer release()

	logger := ctxlog.FromContext(ctx).With("document", d.Name())
	ctx = ctxlog.WithLogger(ctx, logger)
	start := time.Now()
	logger.Debug("Recompute pass started.", "objects", d.Len())

	d.DrainTouched()
	g := depgraph.Build(ctx, d.Objects())
	n := g.Len()
	p := &pass{
		engine:  e,
		doc:     d,
		graph:   g,
		report:  newReport(d.Name(), start),
		blocked: make([]bool, n),
		failed:  make([]bool, n),
		runs:    make([]int, n),
		queue:   scheduler.NewQueue(),
	}

	p.blockCycles(ctx)

	order, err := scheduler.OrderSubset(g, func(i int) bool { return !p.blocked[i] })
	if err != nil {
		return nil, fmt.Errorf("scheduling document '%s': %w", d.Name(), err)
	}
	p.order = order
	p.pos = scheduler.Positions(n, order)

	var seeds []int
	for _, i := range order {
		if g.Object(i).MustExecute() {
			seeds = append(seeds, i)
		}
	}
	p.enqueueDownstream(seeds...)
	logger.Debug("Objects scheduled.", "must_execute", len(seeds), "queued", p.queue.Len())

	p.run(ctx)

	r := p.report
	r.Success = len(r.Failures) == 0 && !r.Aborted
	r.Duration = time.Since(start)
	d.NotifyDocumentRecomputed(r.Result())

	if r.Success {
		logger.Info("🏁 Recompute finished.", "executed", len(r.Executed), "duration", r.Duration)
	} else {
		logger.Warn("Recompute finished with errors.", "executed", len(r.Executed), "failed", len(r.Failed()), "skipped", len(r.Skipped), "pending", len(r.Pending), "aborted", r.Aborted)
	}
	return r, nil
}

// blockCycles marks cycle members with the cycle error and everything
// downstream of them as skipped. None of them executes; all stay touched.
func (p *pass) blockCycles(ctx context.Context) {
	g := p.graph
	if !g.HasCycle() {
		return
	}
	logger := ctxlog.FromContext(ctx)
	cycleErr := g.Err()
	logger.Error("Dependency cycle detected.", "error", cycleErr)

	var members []int
	for i := range g.Len() {
		if g.InCycle(i) {
			members = append(members, i)
			p.report.Cycle = append(p.report.Cycle, g.Object(i).Name())
		}
	}
	for _, i := range members {
		p.blocked[i] = true
		p.markFailed(i, cycleErr)
	}

	// Walk outwards so each skipped object names a nearest blocked dependency.
	queue := members
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.Dependents(v) {
			if p.blocked[w] {
				continue
			}
			p.blocked[w] = true
			p.markFailed(w, &UpstreamError{Object: g.Object(w).Name(), Upstream: g.Object(v).Name(), Cause: cycleErr})
			queue = append(queue, w)
		}
	}
}

func (p *pass) enqueueDownstream(seeds ...int) {
	if len(seeds) == 0 {
		return
	}
	for i, in := range p.graph.Downstream(seeds...) {
		if in && !p.blocked[i] && !p.failed[i] {
			p.queue.Push(p.pos[i])
		}
	}
}

func (p *pass) run(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for p.queue.Len() > 0 {
		if ctx.Err() != nil {
			p.abort(ctx)
			return
		}
		at, _ := p.queue.Pop()
		i := p.order[at]
		o := p.graph.Object(i)
		if p.failed[i] {
			continue
		}

		if p.runs[i] >= p.engine.maxExecutions {
			err := fmt.Errorf("%w: executed %d times", ErrNotConverged, p.runs[i])
			logger.Error("Object keeps being touched, giving up.", "object", o.Name(), "executions", p.runs[i])
			p.markFailed(i, err)
			p.skipDependents(ctx, i, err)
			continue
		}
		p.runs[i]++

		err := p.engine.runOne(ctx, p.doc, o)
		switch {
		case err == nil:
			p.report.Executed = append(p.report.Executed, o.Name())
		case isAbort(ctx, err):
			p.queue.Push(at)
			p.runs[i]--
			p.abort(ctx)
			return
		default:
			p.failed[i] = true
			p.report.fail(o.Name(), err)
			p.skipDependents(ctx, i, err)
		}

		p.requeueTouched(ctx, i)
	}
}

// requeueTouched drains the touch log and queues every touched object of
// the graph plus its downstream closure, including objects that already ran.
func (p *pass) requeueTouched(ctx context.Context, current int) {
	var seeds []int
	for _, t := range p.doc.DrainTouched() {
		j, ok := p.graph.IndexOf(t)
		if !ok || j == current || p.blocked[j] || p.failed[j] {
			continue
		}
		seeds = append(seeds, j)
	}
	if len(seeds) == 0 {
		return
	}
	ctxlog.FromContext(ctx).Debug("Objects touched during recompute, re-queuing.", "by", p.graph.Object(current).Name(), "count", len(seeds))
	p.enqueueDownstream(seeds...)
}

// skipDependents marks everything downstream of the failed node as skipped.
func (p *pass) skipDependents(ctx context.Context, i int, cause error) {
	logger := ctxlog.FromContext(ctx)
	failedName := p.graph.Object(i).Name()
	queue := []int{i}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range p.graph.Dependents(v) {
			if p.failed[w] || p.blocked[w] {
				continue
			}
			dep := p.graph.Object(w)
			logger.Warn("Skipping dependent object due to upstream failure.", "object", dep.Name(), "dependency", failedName)
			p.markFailed(w, &UpstreamError{Object: dep.Name(), Upstream: failedName, Cause: cause})
			queue = append(queue, w)
		}
	}
}

// markFailed stores err on node i, keeps it touched and reports it.
func (p *pass) markFailed(i int, err error) {
	o := p.graph.Object(i)
	p.failed[i] = true
	o.SetStatus(object.StatusTouched, true)
	o.SetError(err)
	p.report.fail(o.Name(), err)
	p.doc.NotifyError(o, err)
}

// abort stops the pass. Everything still queued stays touched.
func (p *pass) abort(ctx context.Context) {
	p.report.Aborted = true
	for _, at := range p.queue.Items() {
		o := p.graph.Object(p.order[at])
		o.SetStatus(object.StatusTouched, true)
		p.report.Pending = append(p.report.Pending, o.Name())
	}
	ctxlog.FromContext(ctx).Warn("Recompute aborted.", "pending", len(p.report.Pending), "error", ctx.Err())
}

func isAbort(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// RecomputeObject executes o together with the part of its upstream closure
// that is out of date. If o or anything it would run is already executing,
// nothing runs: the call returns *object.ReentrancyError and the executing
// object ends its running execution in the error state. When no pass is running on d, RecomputeObject claims the
// document for its duration.
func (e *Engine) RecomputeObject(ctx context.Context, d *document.Document, o *object.Object) error {
	logger := ctxlog.FromContext(ctx)
	if o.TestStatus(object.StatusRecomputing) {
		err := &object.ReentrancyError{Object: o.Name()}
		logger.Error("Rejected nested recompute.", "object", o.Name())
		e.recordViolation(o, err)
		return err
	}

	if release, owned := d.TryBeginPass(); owned {
		defer release()
	}

	g := depgraph.Build(ctx, d.Objects())
	target, ok := g.IndexOf(o)
	if !ok {
		return fmt.Errorf("recomputing '%s': %w", o.Name(), document.ErrObjectNotFound)
	}

	upstream := g.Upstream(target)
	if cycleErr := g.CycleErrorWithin(func(i int) bool { return upstream[i] }); cycleErr != nil {
		o.SetError(cycleErr)
		d.NotifyError(o, cycleErr)
		return cycleErr
	}

	var seeds []int
	for i, in := range upstream {
		if in && g.Object(i).MustExecute() {
			seeds = append(seeds, i)
		}
	}
	stale := g.Downstream(seeds...)
	include := func(i int) bool { return i == target || upstream[i] && stale[i] }

	order, err := scheduler.OrderSubset(g, include)
	if err != nil {
		return err
	}
	for _, i := range order {
		if obj := g.Object(i); obj.TestStatus(object.StatusRecomputing) {
			err := &object.ReentrancyError{Object: obj.Name()}
			logger.Error("Rejected nested recompute.", "object", obj.Name(), "requested", o.Name())
			e.recordViolation(obj, err)
			return err
		}
	}
	for _, i := range order {
		obj := g.Object(i)
		if err := e.runOne(ctx, d, obj); err != nil {
			if obj != o {
				err = &UpstreamError{Object: o.Name(), Upstream: obj.Name(), Cause: err}
				o.SetError(err)
				d.NotifyError(o, err)
			}
			return err
		}
	}

	// Dependents outside the executed set now see new inputs.
	for _, i := range order {
		for _, w := range g.Dependents(i) {
			if !include(w) {
				g.Object(w).Touch()
			}
		}
	}
	return nil
}

// runOne executes a single object behind the panic barrier and applies the
// outcome: success purges the touched state and clears the error, failure
// stores the classified error. Aborts leave the object untouched.
// It must never be entered for an object that is already recomputing.
func (e *Engine) runOne(ctx context.Context, d *document.Document, o *object.Object) error {
	logger := ctxlog.FromContext(ctx).With("object", o.Name())
	logger.Debug("Executing object.")

	err := e.execute(ctx, o)
	if v := e.takeViolation(o); v != nil && err == nil {
		err = v
	}

	if err != nil && isAbort(ctx, err) {
		logger.Debug("Execution interrupted.")
		return err
	}
	if err != nil {
		err = classify(o, err)
		logger.Error("Object execution failed.", "error", err)
		o.SetStatus(object.StatusTouched, true)
		o.SetError(err)
		d.NotifyError(o, err)
		return err
	}

	o.Purge()
	o.ClearError()
	logger.Debug("Object executed.")
	d.NotifyRecomputed(o)
	return nil
}

// execute converts a panic in the computation into a FatalComputationError.
func (e *Engine) execute(ctx context.Context, o *object.Object) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FatalComputationError{Object: o.Name(), Panic: r, Stack: debug.Stack()}
		}
	}()
	return o.Execute(context.WithValue(ctx, runningKey{}, o))
}

type runningKey struct{}

// runningObject returns the object whose computation ctx was handed to, if any.
func runningObject(ctx context.Context) *object.Object {
	o, _ := ctx.Value(runningKey{}).(*object.Object)
	return o
}

func (e *Engine) recordViolation(o *object.Object, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.violations[o]; !exists {
		e.violations[o] = err
	}
}

func (e *Engine) takeViolation(o *object.Object) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.violations[o]
	delete(e.violations, o)
	return err
}
