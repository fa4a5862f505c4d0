// Package motion is the animation runtime: it owns the registry of active
// animations, advances them once per host frame, and decides per animation
// whether to step it manually or delegate it to a native facility.
//
// # Model
//
// The engine is single-threaded and cooperative. The host calls
// [Engine.AdvanceFrame] once per display refresh with the measured delta;
// everything else (submission, cancellation, pause/resume) happens between
// frames on the same goroutine. There is no background work and no blocking
// inside the frame path, so long-running work in a sink callback directly
// steals frame budget from every other animation; the performance monitor
// exists to detect exactly that.
//
// # Basic usage
//
//	eng, _ := motion.New(config.DefaultEngineConfig(), config.DefaultBudget())
//	handle, err := eng.Submit(motion.Request{
//	    From:     value.Target{"opacity": value.Scalar(0)},
//	    To:       value.Target{"opacity": value.Scalar(1)},
//	    Transition: motion.Transition{Duration: 0.3, Easing: motion.EasingNamed("ease-out")},
//	    OnUpdate: applyStyle,
//	})
//	// every frame:
//	eng.AdvanceFrame(deltaSeconds)
package motion

import (
	"fmt"

	"github.com/go-drift/motion/pkg/config"
	"github.com/go-drift/motion/pkg/curve"
	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/monitor"
	"github.com/go-drift/motion/pkg/value"
)

// Request describes one animation submission.
type Request struct {
	// Owner optionally names the logical target of this animation (for
	// example an element identifier). Submitting again with the same
	// owner while its animation is live overrides it in place: the
	// current interpolated values become the new start values, so an
	// abrupt target change never snaps back to the old start.
	Owner string

	// From and To are the endpoints. Every property in To must have a
	// matching-kind value in From, except on an owner override where the
	// live animation supplies the current value.
	From value.Target
	To   value.Target

	Transition Transition

	// OnUpdate receives the computed values once per frame. The target
	// map is reused across frames; copy it if it must be retained past
	// the callback. A panicking sink is reported through the error
	// handler and its animation cancelled.
	OnUpdate func(value.Target)
	// OnComplete fires when the animation reaches its end values,
	// including when the degradation policy force-completes it. It does
	// not fire on cancellation.
	OnComplete func()

	// WantsProgress requests per-frame introspection and forces manual
	// driving even when the transition would be delegable.
	WantsProgress bool
}

// Engine owns the animation registry, the frame scheduler, and the
// performance monitor. Construct one per embedding application with [New];
// there is no ambient singleton.
type Engine struct {
	cfg    config.EngineConfig
	budget config.PerformanceBudget

	reg    *registry
	mon    *monitor.Monitor
	native NativeFacility

	defaultCurve curve.Curve
	clock        Clock
}

// New creates an engine with the given configuration and budget.
func New(cfg config.EngineConfig, budget config.PerformanceBudget) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	def, _ := curve.Named(cfg.DefaultCurve)
	return &Engine{
		cfg:          cfg,
		budget:       budget,
		reg:          newRegistry(),
		mon:          monitor.New(budget, cfg.ViolationFrames),
		defaultCurve: def,
		clock:        realClock{},
	}, nil
}

// SetNativeFacility installs the host's declarative animation facility.
// Pass nil to force manual driving for all subsequent submissions.
func (e *Engine) SetNativeFacility(f NativeFacility) { e.native = f }

// SetClock replaces the engine clock, returning the previous one so tests
// can restore it.
func (e *Engine) SetClock(c Clock) Clock {
	prev := e.clock
	if c == nil {
		c = realClock{}
	}
	e.clock = c
	return prev
}

// Submit requests an animation from From to To under the given transition.
// Malformed submissions (mismatched value kinds, invalid transitions) fail
// here, never at frame time.
//
// When the live-animation count is already at the budget's concurrency cap,
// the new animation is force-completed immediately per the degradation
// policy: the sink receives the end values, OnComplete fires, and the
// returned handle reports StateCompleted.
func (e *Engine) Submit(req Request) (Handle, error) {
	const op = "motion.Engine.Submit"

	if len(req.To) == 0 {
		return Handle{}, &errors.MotionError{
			Op: op, Kind: errors.KindConfig,
			Err: fmt.Errorf("submission has no target values"),
		}
	}
	if err := req.Transition.validate(); err != nil {
		return Handle{}, err
	}
	curveFn, err := req.Transition.Easing.resolve(e.defaultCurve)
	if err != nil {
		return Handle{}, err
	}

	if req.Owner != "" {
		if h, ok := e.reg.owners[req.Owner]; ok {
			if rec := e.reg.get(h); rec != nil && !rec.state.terminal() {
				return h, e.override(rec, req, curveFn)
			}
		}
	}

	if err := value.CheckCompatible(req.From, req.To); err != nil {
		return Handle{}, err
	}
	from, err := resolveStarts(op, req.From, req.To, nil)
	if err != nil {
		return Handle{}, err
	}

	forceComplete := e.reg.liveCount() >= e.budget.MaxConcurrentAnimations

	h, rec := e.reg.alloc()
	rec.owner = req.Owner
	rec.props = sortedProperties(from, req.To)
	rec.transition = req.Transition
	rec.curveFn = curveFn
	rec.onUpdate = req.OnUpdate
	rec.onComplete = req.OnComplete
	rec.delayLeft = req.Transition.Delay
	rec.state = StateIdle

	if req.Transition.Spring != nil {
		if err := rec.initSprings(*req.Transition.Spring, nil); err != nil {
			rec.state = StateCancelled
			e.reg.release(h)
			return Handle{}, err
		}
	}

	if req.Owner != "" {
		e.reg.owners[req.Owner] = h
	}

	if forceComplete {
		rec.drv = manual
		e.forceComplete(rec)
		return h, nil
	}

	rec.drv = e.selectDriver(req, rec)
	rec.state = StateScheduled
	return h, nil
}

// override retargets a live record in place. The record keeps its handle
// and pool slot; current interpolated values become the new starts, and an
// in-flight spring's component velocities carry over so motion stays
// continuous through the target change.
func (e *Engine) override(rec *record, req Request, curveFn curve.Curve) error {
	const op = "motion.Engine.Submit"

	from, err := resolveStarts(op, req.From, req.To, rec)
	if err != nil {
		return err
	}

	// Carry spring velocities before the old simulations are replaced.
	var carried map[string][]float64
	if req.Transition.Spring != nil {
		carried = make(map[string][]float64)
		for i := range rec.props {
			p := &rec.props[i]
			if len(p.sims) == 0 {
				continue
			}
			vs := make([]float64, len(p.sims))
			for j, sim := range p.sims {
				vs[j] = sim.Velocity()
			}
			carried[p.name] = vs
		}
	}

	// A delegated animation is torn out of the facility; the override
	// re-decides the driving mode from scratch.
	if d, ok := rec.drv.(*delegatedDriver); ok {
		d.cancel(rec)
	}

	wasPaused := rec.state == StatePaused
	rec.props = sortedProperties(from, req.To)
	rec.transition = req.Transition
	rec.curveFn = curveFn
	rec.onUpdate = req.OnUpdate
	rec.onComplete = req.OnComplete
	rec.elapsed = 0
	rec.delayLeft = req.Transition.Delay
	rec.repeatDelayLeft = 0
	rec.iterationsDone = 0
	rec.pendingStaged = false

	if req.Transition.Spring != nil {
		if err := rec.initSprings(*req.Transition.Spring, carried); err != nil {
			return err
		}
	} else {
		for i := range rec.props {
			rec.props[i].sims = nil
			rec.props[i].template = nil
		}
	}

	rec.drv = e.selectDriver(req, rec)
	if wasPaused {
		rec.state = StatePaused
	} else {
		rec.state = StateScheduled
	}
	return nil
}

// resolveStarts builds the start endpoint for every property in to. An
// override consults the live record's current values first; otherwise every
// property must come from the caller's From with a matching kind.
func resolveStarts(op string, from, to value.Target, live *record) (value.Target, error) {
	out := make(value.Target, len(to))
	for name, target := range to {
		var start value.Value
		if live != nil {
			if cur, ok := live.currentValue(name); ok {
				start = cur
			}
		}
		if start == nil {
			start = from[name]
		}
		if start == nil {
			return nil, &errors.MotionError{
				Op: op, Kind: errors.KindConfig, Property: name,
				Err: fmt.Errorf("no start value for property"),
			}
		}
		if target == nil || start.Kind() != target.Kind() {
			return nil, errors.TypeMismatch(op, name, start.Kind().String(), kindLabel(target))
		}
		out[name] = start
	}
	return out, nil
}

func kindLabel(v value.Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}

// Cancel stops the animation immediately. Cancelling a handle that is
// stale, unknown, or already terminal is a recoverable no-op reported as
// handle-not-found. After cancellation the handle's state reads Cancelled
// until the pool reuses the slot.
//
// A cancel issued from inside a sink callback lands after the current
// frame's batch was computed; the cancelled record's own not-yet-delivered
// sink call for that frame is suppressed, and the record is excluded from
// every subsequent frame. Once Cancel returns, the sink is never invoked
// again.
func (e *Engine) Cancel(h Handle) error {
	rec := e.reg.get(h)
	if rec == nil || rec.state.terminal() {
		return e.staleHandle("motion.Engine.Cancel")
	}
	rec.drv.cancel(rec)
	rec.state = StateCancelled
	e.reg.release(h)
	return nil
}

// Pause freezes the animation at its current position. Resuming continues
// from the exact frozen state, so pausing never causes a visible jump.
func (e *Engine) Pause(h Handle) error {
	rec := e.reg.get(h)
	if rec == nil || rec.state.terminal() {
		return e.staleHandle("motion.Engine.Pause")
	}
	if rec.state == StatePaused {
		return nil
	}
	rec.drv.pause(rec)
	rec.state = StatePaused
	return nil
}

// Resume continues a paused animation.
func (e *Engine) Resume(h Handle) error {
	rec := e.reg.get(h)
	if rec == nil || rec.state.terminal() {
		return e.staleHandle("motion.Engine.Resume")
	}
	if rec.state != StatePaused {
		return nil
	}
	rec.drv.resume(rec)
	rec.state = StateScheduled
	return nil
}

// State returns the animation's lifecycle state. Terminal states stay
// readable until the pool reuses the slot, after which the stale handle
// reports handle-not-found.
func (e *Engine) State(h Handle) (State, error) {
	rec := e.reg.get(h)
	if rec == nil {
		return StateIdle, e.staleHandle("motion.Engine.State")
	}
	return rec.state, nil
}

// ActiveCount returns the number of live (non-terminal) animations.
func (e *Engine) ActiveCount() int { return e.reg.liveCount() }

// SnapshotMetrics returns the monitor's current rolling metrics.
func (e *Engine) SnapshotMetrics() monitor.PerformanceSnapshot {
	snap := e.mon.Snapshot()
	snap.ActiveCount = e.reg.liveCount()
	return snap
}

// AdvanceFrame advances every scheduled and running animation by
// deltaSeconds and delivers the resulting values. The host calls it once
// per display refresh with the measured (not nominal) delta, so variable
// refresh rates and dropped frames are tolerated; deltas beyond the
// configured maximum are clamped so a backgrounded host cannot feed the
// spring integrator an explosive catch-up step.
//
// All records are advanced and all outputs computed before any sink runs;
// the sink batch is then delivered in registry insertion order. Runtime
// errors during a tick are reported through the error handler and never
// abort the frame.
func (e *Engine) AdvanceFrame(deltaSeconds float64) {
	frameStart := e.clock.Now()

	if deltaSeconds < 0 {
		deltaSeconds = 0
	}
	if deltaSeconds > e.cfg.MaxFrameDelta {
		deltaSeconds = e.cfg.MaxFrameDelta
	}

	// Degradation policy: after the configured run of over-budget frames,
	// force-complete the newest animations rather than dropping them
	// silently, so UI state is never left visually inconsistent.
	if e.mon.BudgetViolated() {
		e.shedNewest()
		e.mon.ResetViolation()
	}

	// Compute phase. The iteration order snapshot keeps this frame's
	// batch stable even if a sink cancels or submits mid-frame.
	order := make([]uint32, len(e.reg.order))
	copy(order, e.reg.order)

	type delivery struct {
		h    Handle
		done bool
	}
	batch := make([]delivery, 0, len(order))

	for _, idx := range order {
		rec := e.reg.slots[idx].rec
		if rec.state != StateScheduled && rec.state != StateRunning {
			continue
		}
		rec.state = StateRunning
		rec.pendingStaged = false
		done := rec.drv.advance(rec, deltaSeconds)
		if rec.pendingStaged || done {
			batch = append(batch, delivery{h: rec.handle, done: done})
		}
	}

	// Delivery phase: one batch after all computations, so sinks never
	// interleave reads and writes of layout-affecting state mid-frame.
	// Entries resolve through the registry rather than holding the record:
	// a sink may cancel a later record and submit a new animation into the
	// freed slot, and the new occupant must not inherit the old entry.
	for _, d := range batch {
		rec := e.reg.get(d.h)
		if rec == nil || rec.state == StateCancelled {
			// Cancelled (or recycled) by an earlier sink in this batch.
			continue
		}
		if rec.pendingStaged {
			e.callSink(rec)
		}
	}
	for _, d := range batch {
		if !d.done {
			continue
		}
		rec := e.reg.get(d.h)
		if rec == nil || rec.state.terminal() || !rec.pendingStaged {
			// Gone, already terminal, or overridden by a sink mid-frame;
			// an overridden record starts a new life and must not be
			// completed by its previous one.
			continue
		}
		rec.state = StateCompleted
		e.callComplete(rec)
		e.reg.release(d.h)
	}

	e.mon.RecordFrame(e.clock.Now().Sub(frameStart), e.reg.liveCount())
}

// shedNewest force-completes the newest animations until the live count is
// back under the concurrency cap, always shedding at least one.
func (e *Engine) shedNewest() {
	n := e.reg.liveCount() - e.budget.MaxConcurrentAnimations
	if n < 1 {
		n = 1
	}
	for ; n > 0 && len(e.reg.order) > 0; n-- {
		idx := e.reg.order[len(e.reg.order)-1]
		e.forceComplete(e.reg.slots[idx].rec)
	}
}

// forceComplete jumps a record to its end values and completes it through
// the normal path: the sink sees the final state and OnComplete fires.
func (e *Engine) forceComplete(rec *record) {
	rec.drv.jumpToEnd(rec)
	e.callSink(rec)
	if rec.state.terminal() {
		// The sink panicked and the record was cancelled during delivery.
		return
	}
	rec.state = StateCompleted
	e.callComplete(rec)
	e.reg.release(rec.handle)
}

// callSink delivers the staged values with panic isolation: one panicking
// sink must not block every other animation from advancing. The panicking
// animation itself is cancelled, so a broken callback fires at most once
// instead of panicking again on every subsequent frame.
func (e *Engine) callSink(rec *record) {
	if rec.onUpdate == nil {
		return
	}
	defer errors.RecoverWithCallback("motion.Engine.AdvanceFrame(sink)", func(any) {
		if !rec.state.terminal() {
			rec.drv.cancel(rec)
			rec.state = StateCancelled
			e.reg.release(rec.handle)
		}
	})
	rec.onUpdate(rec.pending)
}

func (e *Engine) callComplete(rec *record) {
	if rec.onComplete == nil {
		return
	}
	defer errors.Recover("motion.Engine.AdvanceFrame(complete)")
	rec.onComplete()
}

func (e *Engine) staleHandle(op string) error {
	err := errors.HandleNotFound(op)
	errors.Report(err)
	return err
}
