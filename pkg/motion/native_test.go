package motion

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/config"
	"github.com/go-drift/motion/pkg/curve"
	"github.com/go-drift/motion/pkg/value"
)

// fakeFacility records delegation attempts and exposes the completion
// signal so tests can finish a native animation on demand.
type fakeFacility struct {
	refuse   map[string]bool // properties CanAnimate rejects
	startErr error

	specs   []NativeSpec
	handles []*fakeNativeHandle
}

func (f *fakeFacility) CanAnimate(property string, _ value.Value) bool {
	return !f.refuse[property]
}

func (f *fakeFacility) Start(spec NativeSpec) (NativeHandle, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.specs = append(f.specs, spec)
	h := &fakeNativeHandle{}
	f.handles = append(f.handles, h)
	return h, nil
}

type fakeNativeHandle struct {
	paused, resumed, cancelled int
}

func (h *fakeNativeHandle) Pause() error  { h.paused++; return nil }
func (h *fakeNativeHandle) Resume() error { h.resumed++; return nil }
func (h *fakeNativeHandle) Cancel() error { h.cancelled++; return nil }

func newDelegatingEngine(t *testing.T) (*Engine, *fakeFacility) {
	t.Helper()
	cfg := config.DefaultEngineConfig()
	cfg.MaxFrameDelta = 10
	eng, err := New(cfg, config.DefaultBudget())
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeFacility{}
	eng.SetNativeFacility(f)
	return eng, f
}

func TestDelegationChosenForExpressibleTransition(t *testing.T) {
	eng, f := newDelegatingEngine(t)

	var got value.Target
	completed := false
	req := Request{
		From:       value.Target{"opacity": value.Scalar(0)},
		To:         value.Target{"opacity": value.Scalar(1)},
		Transition: Transition{Duration: 0.4, Easing: EasingNamed("ease-out"), Delay: 0.1},
		OnUpdate:   func(v value.Target) { got = v.Clone() },
		OnComplete: func() { completed = true },
	}
	h, err := eng.Submit(req)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.specs) != 1 {
		t.Fatalf("facility received %d starts, want 1", len(f.specs))
	}

	spec := f.specs[0]
	if spec.Duration != 0.4 || spec.Delay != 0.1 {
		t.Errorf("spec timing = %v/%v, want 0.4/0.1", spec.Duration, spec.Delay)
	}
	if spec.Bezier != [4]float64{0, 0, 0.2, 1} {
		t.Errorf("spec bezier = %v, want ease-out control points", spec.Bezier)
	}
	if spec.From["opacity"] != value.Scalar(0) || spec.To["opacity"] != value.Scalar(1) {
		t.Errorf("spec endpoints = %v -> %v", spec.From, spec.To)
	}

	// While the facility drives, frames produce no sink traffic.
	eng.AdvanceFrame(0.016)
	eng.AdvanceFrame(0.016)
	if got != nil {
		t.Errorf("sink received %v while the animation was delegated", got)
	}
	if s, _ := eng.State(h); s != StateRunning {
		t.Errorf("state = %v, want running", s)
	}

	// Completion arrives from the facility; the next frame delivers the
	// exact end values and completes the handle.
	spec.OnComplete()
	eng.AdvanceFrame(0.016)
	if got == nil || got["opacity"] != value.Scalar(1) {
		t.Errorf("post-completion sink payload = %v, want exact end values", got)
	}
	if !completed {
		t.Error("OnComplete did not fire")
	}
	if s, _ := eng.State(h); s != StateCompleted {
		t.Errorf("state = %v, want completed", s)
	}
}

func TestManualFallbacks(t *testing.T) {
	base := func() Request {
		return Request{
			From:       value.Target{"opacity": value.Scalar(0)},
			To:         value.Target{"opacity": value.Scalar(1)},
			Transition: Transition{Duration: 0.4},
		}
	}

	tests := []struct {
		name  string
		setup func(*Engine, *fakeFacility) Request
	}{
		{"spring transition", func(e *Engine, f *fakeFacility) Request {
			req := base()
			s := curve.DefaultSpring()
			req.Transition.Spring = &s
			return req
		}},
		{"progress introspection", func(e *Engine, f *fakeFacility) Request {
			req := base()
			req.WantsProgress = true
			return req
		}},
		{"non-bezier easing", func(e *Engine, f *fakeFacility) Request {
			req := base()
			req.Transition.Easing = EasingNamed("bounce-out")
			return req
		}},
		{"repeat delay", func(e *Engine, f *fakeFacility) Request {
			req := base()
			req.Transition.Repeat = Infinite()
			req.Transition.RepeatDelay = 0.2
			return req
		}},
		{"alternating repeat", func(e *Engine, f *fakeFacility) Request {
			req := base()
			req.Transition.Repeat = InfiniteAlternate()
			return req
		}},
		{"unanimatable property", func(e *Engine, f *fakeFacility) Request {
			f.refuse = map[string]bool{"opacity": true}
			return base()
		}},
		{"facility start failure", func(e *Engine, f *fakeFacility) Request {
			f.startErr = fmt.Errorf("compositor gone")
			return base()
		}},
		{"delegation disabled", func(e *Engine, f *fakeFacility) Request {
			e.cfg.Delegation = false
			return base()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiet(t) // the start-failure case reports a delegation error
			eng, f := newDelegatingEngine(t)
			req := tt.setup(eng, f)

			frames := 0
			req.OnUpdate = func(value.Target) { frames++ }
			if _, err := eng.Submit(req); err != nil {
				t.Fatal(err)
			}
			if len(f.specs) != 0 {
				t.Fatal("animation was delegated")
			}
			// Manual driving produces per-frame sink traffic.
			eng.AdvanceFrame(0.1)
			if frames == 0 {
				t.Error("manual fallback produced no sink calls")
			}
		})
	}
}

func TestDelegatedControlForwarded(t *testing.T) {
	eng, f := newDelegatingEngine(t)

	req := Request{
		From:       value.Target{"x": value.Length(0)},
		To:         value.Target{"x": value.Length(100)},
		Transition: Transition{Duration: 1},
	}
	h, err := eng.Submit(req)
	if err != nil {
		t.Fatal(err)
	}
	native := f.handles[0]

	if err := eng.Pause(h); err != nil {
		t.Fatal(err)
	}
	if native.paused != 1 {
		t.Errorf("native Pause called %d times, want 1", native.paused)
	}
	// Idempotent: a second pause does not reach the facility.
	if err := eng.Pause(h); err != nil {
		t.Fatal(err)
	}
	if native.paused != 1 {
		t.Errorf("idempotent Pause reached the facility (%d calls)", native.paused)
	}

	if err := eng.Resume(h); err != nil {
		t.Fatal(err)
	}
	if native.resumed != 1 {
		t.Errorf("native Resume called %d times, want 1", native.resumed)
	}

	if err := eng.Cancel(h); err != nil {
		t.Fatal(err)
	}
	if native.cancelled != 1 {
		t.Errorf("native Cancel called %d times, want 1", native.cancelled)
	}
	if s, _ := eng.State(h); s != StateCancelled {
		t.Errorf("state = %v, want cancelled", s)
	}
}

func TestDelegatedForceCompleteCancelsNative(t *testing.T) {
	budget := config.DefaultBudget()
	budget.MaxConcurrentAnimations = 1
	cfg := config.DefaultEngineConfig()
	cfg.MaxFrameDelta = 10
	eng, err := New(cfg, budget)
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeFacility{}
	eng.SetNativeFacility(f)

	req := Request{
		From:       value.Target{"x": value.Length(0)},
		To:         value.Target{"x": value.Length(100)},
		Transition: Transition{Duration: 5},
	}
	if _, err := eng.Submit(req); err != nil {
		t.Fatal(err)
	}

	// Arm the violation signal, then let the degradation policy shed the
	// delegated animation. The native side must be cancelled so the
	// facility does not keep animating a completed record.
	eng.SetClock(&stepClock{step: 30 * time.Millisecond})
	for _i := 0; _i < cfg.ViolationFrames+1; _i++ {
		eng.AdvanceFrame(0.016)
	}
	if f.handles[0].cancelled != 1 {
		t.Errorf("native Cancel called %d times during force-complete, want 1", f.handles[0].cancelled)
	}
}

func TestOwnerOverrideDelegatedNoSnapBack(t *testing.T) {
	eng, f := newDelegatingEngine(t)

	req := Request{
		Owner:      "card",
		From:       value.Target{"opacity": value.Scalar(0)},
		To:         value.Target{"opacity": value.Scalar(1)},
		Transition: Transition{Duration: 1, Easing: EasingNamed("linear")},
	}
	if _, err := eng.Submit(req); err != nil {
		t.Fatal(err)
	}
	if len(f.specs) != 1 {
		t.Fatal("animation was not delegated")
	}

	// Half a second in, the facility has the value at 0.5. The engine
	// never saw a staged payload for it, only the elapsed time.
	eng.AdvanceFrame(0.5)

	var got []float64
	over := Request{
		Owner:         "card",
		To:            value.Target{"opacity": value.Scalar(0)},
		Transition:    Transition{Duration: 1, Easing: EasingNamed("linear")},
		WantsProgress: true, // forces manual driving
		OnUpdate: func(v value.Target) {
			got = append(got, float64(v["opacity"].(value.Scalar)))
		},
	}
	if _, err := eng.Submit(over); err != nil {
		t.Fatal(err)
	}
	if f.handles[0].cancelled != 1 {
		t.Errorf("old native animation cancelled %d times, want 1", f.handles[0].cancelled)
	}

	// Motion must continue from the estimated mid-flight value, not
	// restart from the original start.
	eng.AdvanceFrame(0.5)
	eng.AdvanceFrame(0.5)
	want := []float64{0.25, 0}
	if len(got) != len(want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("frame %d = %v, want %v (override must start from the facility's current value)", i, got[i], want[i])
		}
	}
}

func TestOwnerOverrideDelegatedHonorsDelay(t *testing.T) {
	eng, f := newDelegatingEngine(t)

	req := Request{
		Owner:      "card",
		From:       value.Target{"opacity": value.Scalar(0)},
		To:         value.Target{"opacity": value.Scalar(1)},
		Transition: Transition{Duration: 1, Delay: 0.4, Easing: EasingNamed("linear")},
	}
	if _, err := eng.Submit(req); err != nil {
		t.Fatal(err)
	}
	if len(f.specs) != 1 {
		t.Fatal("animation was not delegated")
	}

	// 0.6s in, 0.4s of it delay: the facility shows the 0.2s mark.
	eng.AdvanceFrame(0.3)
	eng.AdvanceFrame(0.3)

	var got []float64
	over := Request{
		Owner:         "card",
		To:            value.Target{"opacity": value.Scalar(0)},
		Transition:    Transition{Duration: 1, Easing: EasingNamed("linear")},
		WantsProgress: true,
		OnUpdate: func(v value.Target) {
			got = append(got, float64(v["opacity"].(value.Scalar)))
		},
	}
	if _, err := eng.Submit(over); err != nil {
		t.Fatal(err)
	}
	eng.AdvanceFrame(0.5)
	if len(got) != 1 || math.Abs(got[0]-0.1) > 1e-9 {
		t.Errorf("first post-override value = %v, want [0.1] (start 0.2, halfway to 0)", got)
	}
}

func TestOwnerOverrideTearsOutOfFacility(t *testing.T) {
	eng, f := newDelegatingEngine(t)

	req := Request{
		Owner:      "card",
		From:       value.Target{"opacity": value.Scalar(0)},
		To:         value.Target{"opacity": value.Scalar(1)},
		Transition: Transition{Duration: 1},
	}
	if _, err := eng.Submit(req); err != nil {
		t.Fatal(err)
	}
	if len(f.handles) != 1 {
		t.Fatalf("facility received %d starts, want 1", len(f.handles))
	}

	// Overriding with a spring transition cannot stay delegated; the old
	// native animation must be cancelled and driving switch to manual.
	s := curve.DefaultSpring()
	over := Request{
		Owner:      "card",
		To:         value.Target{"opacity": value.Scalar(0)},
		Transition: Transition{Spring: &s},
	}
	frames := 0
	over.OnUpdate = func(value.Target) { frames++ }
	if _, err := eng.Submit(over); err != nil {
		t.Fatal(err)
	}
	if f.handles[0].cancelled != 1 {
		t.Errorf("old native animation cancelled %d times, want 1", f.handles[0].cancelled)
	}
	if len(f.handles) != 1 {
		t.Errorf("override re-delegated a spring transition")
	}
	eng.AdvanceFrame(0.016)
	if frames == 0 {
		t.Error("override did not switch to manual driving")
	}
}
