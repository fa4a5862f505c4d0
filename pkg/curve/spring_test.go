package curve

import (
	"math"
	"testing"

	"github.com/go-drift/motion/pkg/errors"
)

const frameDt = 1.0 / 60

func runToRest(t *testing.T, sim *Simulation, maxSeconds float64) float64 {
	t.Helper()
	elapsed := 0.0
	for elapsed < maxSeconds {
		if sim.Step(frameDt) {
			return elapsed
		}
		elapsed += frameDt
	}
	t.Fatalf("spring not at rest after %.1fs (position=%v velocity=%v)",
		maxSeconds, sim.Position(), sim.Velocity())
	return elapsed
}

func TestSpringConvergence(t *testing.T) {
	// stiffness 170, damping 26, mass 1 is near-critically damped and must
	// settle well inside five simulated seconds.
	sim := NewSimulation(IOS(), 0, 0, 100)
	runToRest(t, sim, 5)
	if sim.Position() != 100 {
		t.Errorf("rest position = %v, want exactly 100", sim.Position())
	}
	if sim.Velocity() != 0 {
		t.Errorf("rest velocity = %v, want 0", sim.Velocity())
	}
	if !sim.Done() {
		t.Error("Done() = false after rest")
	}
}

func TestSpringNearCriticalOvershootBounded(t *testing.T) {
	sim := NewSimulation(IOS(), 0, 0, 100)
	peak := 0.0
	for !sim.Step(frameDt) {
		if sim.Position() > peak {
			peak = sim.Position()
		}
	}
	if peak > 101 {
		t.Errorf("peak position = %v, want bounded overshoot near 100", peak)
	}
}

func TestSpringUnderdampedOscillates(t *testing.T) {
	sim := NewSimulation(Wobbly(), 0, 0, 100)
	overshot := false
	for !sim.Step(frameDt) {
		if sim.Position() > 100+1 {
			overshot = true
		}
	}
	if !overshot {
		t.Error("wobbly spring never overshot the target")
	}
	if sim.Position() != 100 {
		t.Errorf("rest position = %v, want exactly 100", sim.Position())
	}
}

func TestSpringRestNeedsConsecutiveFrames(t *testing.T) {
	// A state inside the rest thresholds on a single frame must not
	// terminate the spring if the next frame leaves them.
	cfg := DefaultSpring()
	cfg.RestDelta = 0.5
	cfg.RestSpeed = 5
	sim := NewSimulation(cfg, 0.4, 0, 0)
	if sim.Step(frameDt) {
		t.Fatal("spring rested after a single frame inside thresholds")
	}
	// Kick it back out; the rest counter must reset.
	sim.Retarget(100)
	if sim.Done() {
		t.Fatal("Retarget left the spring done")
	}
	if sim.Step(frameDt) {
		t.Fatal("spring rested immediately after retargeting")
	}
}

func TestSpringRetargetKeepsState(t *testing.T) {
	sim := NewSimulation(DefaultSpring(), 0, 0, 100)
	for _i := 0; _i < 10; _i++ {
		sim.Step(frameDt)
	}
	pos, vel := sim.Position(), sim.Velocity()
	if pos == 0 || vel == 0 {
		t.Fatalf("spring did not move: position=%v velocity=%v", pos, vel)
	}
	sim.Retarget(-50)
	if sim.Position() != pos || sim.Velocity() != vel {
		t.Errorf("Retarget changed state: position %v->%v velocity %v->%v",
			pos, sim.Position(), vel, sim.Velocity())
	}
	runToRest(t, sim, 10)
	if sim.Position() != -50 {
		t.Errorf("rest position = %v, want -50", sim.Position())
	}
}

func TestSpringDivergenceForcesTarget(t *testing.T) {
	sim := NewSimulation(DefaultSpring(), math.NaN(), 0, 42)
	if !sim.Step(frameDt) {
		t.Fatal("non-finite state did not terminate the spring")
	}
	if !sim.Diverged() {
		t.Error("Diverged() = false")
	}
	if sim.Position() != 42 {
		t.Errorf("diverged position = %v, want target 42", sim.Position())
	}
	if sim.Velocity() != 0 {
		t.Errorf("diverged velocity = %v, want 0", sim.Velocity())
	}
	// Terminated springs stay terminated.
	if !sim.Step(frameDt) {
		t.Error("Step on a finished spring returned false")
	}
}

func TestSpringLargeDeltaStable(t *testing.T) {
	// A stiff spring stepped with a huge frame delta must stay finite
	// thanks to substepping.
	sim := NewSimulation(Snappy(), 0, 0, 100)
	sim.Step(0.5)
	if !isFinite(sim.Position()) || !isFinite(sim.Velocity()) {
		t.Fatalf("large delta destabilized the integrator: position=%v velocity=%v",
			sim.Position(), sim.Velocity())
	}
	if math.Abs(sim.Position()-100) > 50 {
		t.Errorf("position after 0.5s = %v, want near 100", sim.Position())
	}
}

func TestSpringValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Spring
		ok   bool
	}{
		{"default", DefaultSpring(), true},
		{"zero stiffness", Spring{Stiffness: 0, Damping: 10, Mass: 1}, false},
		{"negative damping", Spring{Stiffness: 100, Damping: -1, Mass: 1}, false},
		{"zero mass", Spring{Stiffness: 100, Damping: 10, Mass: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok {
				if errors.KindOf(err) != errors.KindConfig {
					t.Errorf("Validate() = %v, want config error", err)
				}
			}
		})
	}
}

func TestDampingRatio(t *testing.T) {
	tests := []struct {
		cfg  Spring
		want float64
	}{
		{preset(100, 20), 1},   // critically damped
		{DefaultSpring(), 0.5}, // underdamped
		{preset(100, 40), 2},   // overdamped
	}
	for _, tt := range tests {
		if got := tt.cfg.DampingRatio(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("DampingRatio(k=%g c=%g) = %v, want %v",
				tt.cfg.Stiffness, tt.cfg.Damping, got, tt.want)
		}
	}
}
