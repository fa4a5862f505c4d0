package motion

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-drift/motion/pkg/curve"
	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/value"
)

// property is one animated property inside a record: its endpoints and, for
// spring driving, the per-component simulations.
type property struct {
	name  string
	start value.Value
	end   value.Value

	// Spring state. nil for duration-bound driving.
	template value.Value
	sims     []*curve.Simulation
	comps    []float64 // scratch buffer for Recompose
	reported bool      // numeric-instability reported once per property
}

// record is the registry-owned state of one animation. External code only
// ever sees its Handle; the scheduler mutates elapsed and state, explicit
// pause/resume/cancel calls mutate state, nothing else touches it.
type record struct {
	id     uint64
	handle Handle
	owner  string

	props      []property
	transition Transition
	curveFn    curve.Curve

	state State
	drv   driver

	onUpdate   func(value.Target)
	onComplete func()

	// elapsed is time into the current iteration, excluding delay.
	// Pausing freezes it; resuming continues from the frozen value.
	elapsed         float64
	delayLeft       float64
	repeatDelayLeft float64
	iterationsDone  int

	// pending is the sink payload staged during the compute phase and
	// delivered in the post-compute batch. The map is reused across
	// frames to avoid per-frame allocation.
	pending       value.Target
	pendingStaged bool
}

func (r *record) reset() {
	*r = record{pending: r.pending}
	for k := range r.pending {
		delete(r.pending, k)
	}
}

// stage computes the sink payload at eased progress t.
func (r *record) stage(t float64) {
	eased := r.curveFn(t)
	r.ensurePending()
	for i := range r.props {
		p := &r.props[i]
		v, err := value.Interpolate(p.start, p.end, eased)
		if err != nil {
			// Pairs are validated at submission; this is unreachable
			// unless a sink mutated a composite in place.
			continue
		}
		r.pending[p.name] = v
	}
	r.pendingStaged = true
}

// stageEnd stages the exact end values.
func (r *record) stageEnd() {
	r.ensurePending()
	for i := range r.props {
		r.pending[r.props[i].name] = r.props[i].end
	}
	r.pendingStaged = true
}

func (r *record) ensurePending() {
	if r.pending == nil {
		r.pending = make(value.Target, len(r.props))
	}
}

// currentValue returns the last computed value for a property. Used when a
// new submission overrides this record in place: the override must begin
// from where the property visibly is, not from the old start, or the
// animation would snap back.
//
// Manually driven records stage into pending every frame, so the staged
// value is authoritative. Delegated records never stage (the facility
// applies values itself), so the expected value is reconstructed from the
// transition and the tracked elapsed time instead.
func (r *record) currentValue(name string) (value.Value, bool) {
	if v, ok := r.pending[name]; ok && v != nil {
		return v, true
	}
	for i := range r.props {
		p := &r.props[i]
		if p.name != name {
			continue
		}
		if v, ok := r.estimate(p); ok {
			return v, true
		}
		return p.start, true
	}
	return nil, false
}

// estimate computes the value a duration-bound record should currently show
// from its elapsed time and curve. Repetition that a facility can express
// restarts each iteration, so progress wraps rather than clamps for it.
func (r *record) estimate(p *property) (value.Value, bool) {
	if r.transition.Spring != nil || r.curveFn == nil || r.elapsed <= 0 {
		return nil, false
	}
	progress := r.elapsed / r.transition.duration()
	if progress >= 1 {
		switch r.transition.Repeat.Kind {
		case RepeatCount, RepeatInfinite:
			progress -= math.Floor(progress)
		default:
			progress = 1
		}
	}
	v, err := value.Interpolate(p.start, p.end, r.curveFn(progress))
	if err != nil {
		return nil, false
	}
	return v, true
}

// flip swaps the start/end roles of every property. InfiniteAlternate
// repeats flip at each iteration boundary instead of completing.
func (r *record) flip() {
	for i := range r.props {
		p := &r.props[i]
		p.start, p.end = p.end, p.start
	}
}

// advanceTimed advances a duration-bound record by dt seconds (delay already
// consumed) and stages the resulting values. Iteration boundaries carry the
// leftover delta into the next iteration so repetition accumulates no drift.
func (r *record) advanceTimed(dt float64) bool {
	r.elapsed += dt
	dur := r.transition.duration()

	for {
		if r.repeatDelayLeft > 0 {
			if r.elapsed < r.repeatDelayLeft {
				r.repeatDelayLeft -= r.elapsed
				r.elapsed = 0
				r.stage(0)
				return false
			}
			r.elapsed -= r.repeatDelayLeft
			r.repeatDelayLeft = 0
		}

		if progress := r.elapsed / dur; progress < 1 {
			r.stage(progress)
			return false
		}

		switch r.transition.Repeat.Kind {
		case RepeatNever:
			r.stageEnd()
			return true
		case RepeatCount:
			r.iterationsDone++
			if r.iterationsDone >= r.transition.Repeat.Count {
				r.stageEnd()
				return true
			}
		case RepeatInfinite:
			r.iterationsDone++
		case RepeatInfiniteAlternate:
			r.iterationsDone++
			r.flip()
		}

		r.elapsed -= dur
		if r.transition.RepeatDelay > 0 {
			r.repeatDelayLeft = r.transition.RepeatDelay
		}
	}
}

// advanceSpring advances every per-component simulation by dt and stages the
// rebuilt values. The record completes when every simulation is at rest.
// A diverging simulation parks its component at the target and is reported
// as numeric instability rather than spinning the property unbounded.
func (r *record) advanceSpring(dt float64) bool {
	done := true
	for i := range r.props {
		p := &r.props[i]
		diverged := false
		for j, sim := range p.sims {
			if !sim.Step(dt) {
				done = false
			}
			if sim.Diverged() {
				diverged = true
			}
			p.comps[j] = sim.Position()
		}
		if diverged && !p.reported {
			p.reported = true
			errors.Report(&errors.MotionError{
				Op:       "motion.Engine.AdvanceFrame",
				Kind:     errors.KindNumericInstability,
				Property: p.name,
				Err:      fmt.Errorf("spring integrator diverged; animation %d force-completed at target", r.id),
			})
		}
		r.ensurePending()
		r.pending[p.name] = value.Recompose(p.template, p.comps)
	}
	r.pendingStaged = true
	return done
}

// initSprings builds per-component simulations for every property. velocity
// carries a prior spring's component velocity when an override supplies one.
func (r *record) initSprings(cfg curve.Spring, carried map[string][]float64) error {
	for i := range r.props {
		p := &r.props[i]
		template, from, to, err := value.AlignPair(p.start, p.end)
		if err != nil {
			return err
		}
		p.template = template
		p.sims = make([]*curve.Simulation, len(from))
		p.comps = make([]float64, len(from))
		prior := carried[p.name]
		for j := range from {
			v := cfg.Velocity
			if j < len(prior) {
				v = prior[j]
			}
			p.sims[j] = curve.NewSimulation(cfg, from[j], v, to[j])
		}
	}
	return nil
}

// sortedProperties converts an endpoint pair into the record's property
// slice. Property names sort lexicographically so per-record output order
// is deterministic regardless of map iteration.
func sortedProperties(from, to value.Target) []property {
	names := make([]string, 0, len(to))
	for name := range to {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make([]property, 0, len(names))
	for _, name := range names {
		props = append(props, property{name: name, start: from[name], end: to[name]})
	}
	return props
}
