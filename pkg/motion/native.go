package motion

import (
	"fmt"

	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/value"
)

// NativeSpec is the translation of a submitted animation into a native
// declarative facility's configuration format: endpoints, timing, and a
// single cubic-bezier curve.
type NativeSpec struct {
	From value.Target
	To   value.Target
	// Duration and Delay in seconds.
	Duration float64
	Delay    float64
	// Bezier holds the curve control points (x1, y1, x2, y2).
	Bezier [4]float64
	Repeat Repeat
	// OnComplete must be invoked by the facility exactly once when the
	// animation finishes on its own. It must not be invoked after Cancel.
	OnComplete func()
}

// NativeHandle controls one animation running inside the native facility.
type NativeHandle interface {
	Pause() error
	Resume() error
	Cancel() error
}

// NativeFacility is a declarative animation facility supplied by the host,
// such as a compositor-driven CSS transition layer. When an animation is
// expressible in the facility's primitive set the engine delegates driving
// to it entirely and only listens for completion.
type NativeFacility interface {
	// CanAnimate reports whether the facility can natively animate the
	// given property with the given value kind.
	CanAnimate(property string, v value.Value) bool
	// Start begins a delegated animation.
	Start(spec NativeSpec) (NativeHandle, error)
}

// delegatedDriver wraps a NativeHandle behind the driver contract. The
// facility applies values itself; the engine's role reduces to relaying
// pause/resume/cancel and observing the completion signal. On completion
// the engine still delivers one sink update with the exact end values so
// callers observe the same final state in both driving modes.
type delegatedDriver struct {
	native    NativeHandle
	completed bool
}

func (d *delegatedDriver) advance(r *record, dt float64) bool {
	if d.completed {
		r.stageEnd()
		return true
	}
	// The facility applies values itself, but the engine still tracks time
	// so an owner override can estimate the value currently on screen.
	if r.delayLeft > 0 {
		if dt < r.delayLeft {
			r.delayLeft -= dt
			return false
		}
		dt -= r.delayLeft
		r.delayLeft = 0
	}
	r.elapsed += dt
	return false
}

func (d *delegatedDriver) pause(r *record) {
	if err := d.native.Pause(); err != nil {
		reportDelegation("motion.Engine.Pause", r, err)
	}
}

func (d *delegatedDriver) resume(r *record) {
	if err := d.native.Resume(); err != nil {
		reportDelegation("motion.Engine.Resume", r, err)
	}
}

func (d *delegatedDriver) cancel(r *record) {
	if err := d.native.Cancel(); err != nil {
		reportDelegation("motion.Engine.Cancel", r, err)
	}
}

func (d *delegatedDriver) jumpToEnd(r *record) {
	d.cancel(r)
	d.completed = true
	r.stageEnd()
}

func reportDelegation(op string, r *record, err error) {
	errors.Report(&errors.MotionError{
		Op:   op,
		Kind: errors.KindDelegation,
		Err:  fmt.Errorf("native facility error for animation %d: %w", r.id, err),
	})
}

// selectDriver decides Manual vs Delegated driving for a submission.
// Manual is required whenever a spring is used, the caller asked for
// per-frame introspection, the repetition or curve is not expressible in
// the facility's primitive set, or any property is not natively animatable.
// A facility that fails to start also falls back to manual, so submission
// never fails on delegation grounds.
func (e *Engine) selectDriver(req Request, r *record) driver {
	if !e.cfg.Delegation || e.native == nil || req.WantsProgress {
		return manual
	}
	t := req.Transition
	if t.Spring != nil || t.RepeatDelay > 0 {
		return manual
	}
	switch t.Repeat.Kind {
	case RepeatNever, RepeatCount, RepeatInfinite:
	default:
		return manual
	}
	pts, ok := t.Easing.bezierPoints(e.cfg.DefaultCurve)
	if !ok {
		return manual
	}
	for i := range r.props {
		if !e.native.CanAnimate(r.props[i].name, r.props[i].end) {
			return manual
		}
	}

	d := &delegatedDriver{}
	from := make(value.Target, len(r.props))
	to := make(value.Target, len(r.props))
	for i := range r.props {
		from[r.props[i].name] = r.props[i].start
		to[r.props[i].name] = r.props[i].end
	}
	handle, err := e.native.Start(NativeSpec{
		From:       from,
		To:         to,
		Duration:   t.duration(),
		Delay:      t.Delay,
		Bezier:     pts,
		Repeat:     t.Repeat,
		OnComplete: func() { d.completed = true },
	})
	if err != nil {
		reportDelegation("motion.Engine.Submit", r, err)
		return manual
	}
	d.native = handle
	return d
}
