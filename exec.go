package hcpn

import (
	"context"
	"fmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DefaultMaxSteps = 10000

// Outcome is the result of one firing attempt.
type Outcome int

const (
	// NotEnabled means the transition had no enabled binding in its own module.
	NotEnabled Outcome = iota
	// Fired means the transition fired; for a substitution transition the whole child run completed.
	Fired
	// Stalled means a substitution transition was enabled but its child went quiescent before every exit port held a
	// token. Nothing changed.
	Stalled
)

func (o Outcome) String() string {
	switch o {
	case Fired:
		return "fired"
	case Stalled:
		return "stalled"
	default:
		return "not enabled"
	}
}

type ExecOption func(e *Executor)

func WithLogger(logger *zap.Logger) ExecOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) ExecOption {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

// WithMaxSteps bounds the number of child steps one substitution descent may take.
func WithMaxSteps(n int) ExecOption {
	return func(e *Executor) {
		e.maxSteps = n
	}
}

// Executor fires transitions of a hierarchical model. Firings are serialized: a substitution transition runs its
// child to completion before anything else happens, and observers of the parent see either all of its effect or none.
type Executor struct {
	model    *Model
	logger   *zap.Logger
	tracer   trace.Tracer
	maxSteps int
}

func NewExecutor(m *Model, opts ...ExecOption) *Executor {
	e := &Executor{
		model:    m,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("github.com/jt05610/hcpn"),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fire attempts one firing of a transition. Stalls are outcomes, not errors.
func (e *Executor) Fire(ctx context.Context, module, transition string) (Outcome, error) {
	if err := e.model.ensureValid(); err != nil {
		return NotEnabled, err
	}
	mod, err := e.model.registry.Lookup(module)
	if err != nil {
		return NotEnabled, err
	}
	if !hasName(mod.Transitions(), transition) {
		return NotEnabled, fmt.Errorf("%w: %s in module %s", ErrUnknownTransition, transition, module)
	}
	return e.fire(ctx, module, transition)
}

// Step fires the first transition of the module, in declaration order, that can fire. It returns the transition's
// name, or an empty name when the module is quiescent.
func (e *Executor) Step(ctx context.Context, module string) (string, error) {
	if err := e.model.ensureValid(); err != nil {
		return "", err
	}
	if _, err := e.model.registry.Lookup(module); err != nil {
		return "", err
	}
	return e.step(ctx, module)
}

// Run steps the module until it is quiescent or maxSteps transitions have fired. It returns the fired transitions in
// order.
func (e *Executor) Run(ctx context.Context, module string, maxSteps int) ([]string, error) {
	var fired []string
	for maxSteps <= 0 || len(fired) < maxSteps {
		t, err := e.Step(ctx, module)
		if err != nil {
			return fired, err
		}
		if t == "" {
			break
		}
		fired = append(fired, t)
	}
	return fired, nil
}

func (e *Executor) step(ctx context.Context, module string) (string, error) {
	mod := e.model.registry.modules[module]
	for _, t := range mod.Transitions() {
		out, err := e.fire(ctx, module, t)
		if err != nil {
			return "", err
		}
		if out == Fired {
			return t, nil
		}
	}
	return "", nil
}

func (e *Executor) fire(ctx context.Context, module, transition string) (out Outcome, err error) {
	ctx, span := e.tracer.Start(ctx, "hcpn.fire", trace.WithAttributes(
		attribute.String("hcpn.module", module),
		attribute.String("hcpn.transition", transition),
	))
	defer func() {
		span.SetAttributes(attribute.String("hcpn.outcome", out.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	if s, ok := e.model.subs.Get(module, transition); ok {
		return e.fireSubstitution(ctx, s)
	}
	return e.fireOrdinary(ctx, module, transition)
}

func (e *Executor) engine(module string) (Engine, error) {
	mod, err := e.model.registry.Lookup(module)
	if err != nil {
		return nil, err
	}
	eng, ok := mod.(Engine)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotExecutable, module)
	}
	return eng, nil
}

func (e *Executor) fireOrdinary(ctx context.Context, module, transition string) (Outcome, error) {
	eng, err := e.engine(module)
	if err != nil {
		return NotEnabled, err
	}
	if err := e.model.syncIn(module); err != nil {
		return NotEnabled, err
	}
	occ, err := eng.Bind(ctx, transition)
	if err != nil {
		return NotEnabled, err
	}
	if occ == nil {
		return NotEnabled, nil
	}
	before := eng.Marking().Clone()
	if err := eng.Fire(ctx, transition); err != nil {
		return NotEnabled, err
	}
	if err := e.model.syncOut(module); err != nil {
		return NotEnabled, multierr.Append(err, eng.SetMarking(before))
	}
	e.logger.Debug("fired transition", zap.String("module", module), zap.String("transition", transition))
	return Fired, nil
}

type portBinding struct {
	socket string
	port   string
}

func (e *Executor) fireSubstitution(ctx context.Context, s *Substitution) (Outcome, error) {
	eng, err := e.engine(s.Parent)
	if err != nil {
		return NotEnabled, err
	}
	if _, err := e.engine(s.Child); err != nil {
		return NotEnabled, err
	}
	if err := e.model.syncIn(s.Parent); err != nil {
		return NotEnabled, err
	}
	occ, err := eng.Bind(ctx, s.Transition)
	if err != nil {
		return NotEnabled, err
	}
	if occ == nil {
		return NotEnabled, nil
	}
	entries, exits := e.ports(s)
	saved := e.model.snapshot()
	rollback := func(cause error) error {
		if rerr := e.model.restore(saved); rerr != nil {
			return multierr.Append(cause, rerr)
		}
		return cause
	}
	logger := e.logger.With(zap.String("module", s.Parent), zap.String("transition", s.Transition), zap.String("child", s.Child))

	for _, b := range entries {
		consumed := occ.Consumed[b.socket]
		if consumed.Len() == 0 {
			continue
		}
		if err := e.model.RemoveTokens(PlaceRef{Module: s.Parent, Place: b.socket}, consumed.Values()...); err != nil {
			return NotEnabled, rollback(err)
		}
		if err := e.model.AddTokens(PlaceRef{Module: s.Child, Place: b.port}, consumed.Values()...); err != nil {
			return NotEnabled, rollback(err)
		}
	}
	logger.Debug("descending into child")

	done, err := e.descend(ctx, s, exits)
	if err != nil {
		return NotEnabled, rollback(err)
	}
	if !done {
		if err := rollback(nil); err != nil {
			return NotEnabled, err
		}
		logger.Debug("substitution stalled, rolled back")
		return Stalled, nil
	}

	for _, b := range exits {
		ref := PlaceRef{Module: s.Child, Place: b.port}
		ms, err := e.model.Tokens(ref)
		if err != nil {
			return NotEnabled, rollback(err)
		}
		if err := e.model.SetTokens(ref, nil); err != nil {
			return NotEnabled, rollback(err)
		}
		if err := e.model.AddTokens(PlaceRef{Module: s.Parent, Place: b.socket}, ms.Values()...); err != nil {
			return NotEnabled, rollback(err)
		}
	}
	logger.Debug("substitution fired")
	return Fired, nil
}

// descend runs the child until every exit port holds a token. It reports false when the child goes quiescent first.
// A child without exit ports runs to quiescence and counts as done.
func (e *Executor) descend(ctx context.Context, s *Substitution, exits []portBinding) (done bool, err error) {
	ctx, span := e.tracer.Start(ctx, "hcpn.descend", trace.WithAttributes(
		attribute.String("hcpn.module", s.Parent),
		attribute.String("hcpn.transition", s.Transition),
		attribute.String("hcpn.child", s.Child),
	))
	defer func() {
		span.SetAttributes(attribute.Bool("hcpn.done", done))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	for steps := 0; ; steps++ {
		if len(exits) > 0 && e.exitsReady(s.Child, exits) {
			return true, nil
		}
		if e.maxSteps > 0 && steps >= e.maxSteps {
			return false, fmt.Errorf("%w: %s after %d steps", ErrDescentLimit, s, steps)
		}
		t, err := e.step(ctx, s.Child)
		if err != nil {
			return false, err
		}
		if t == "" {
			return len(exits) == 0, nil
		}
	}
}

func (e *Executor) exitsReady(child string, exits []portBinding) bool {
	for _, b := range exits {
		ms, err := e.model.Tokens(PlaceRef{Module: child, Place: b.port})
		if err != nil || ms.Len() == 0 {
			return false
		}
	}
	return true
}

// ports pairs the sockets of a substitution transition with the child's entry and exit ports, in arc order.
func (e *Executor) ports(s *Substitution) (entries, exits []portBinding) {
	parent := e.model.registry.modules[s.Parent]
	for _, a := range parent.Arcs() {
		if a.Transition != s.Transition {
			continue
		}
		b := portBinding{socket: a.Place, port: s.Port(a.Place)}
		if a.Dir == In {
			if !hasBinding(entries, b) {
				entries = append(entries, b)
			}
		} else if !hasBinding(exits, b) {
			exits = append(exits, b)
		}
	}
	return entries, exits
}

func hasBinding(bb []portBinding, b portBinding) bool {
	for _, x := range bb {
		if x == b {
			return true
		}
	}
	return false
}
