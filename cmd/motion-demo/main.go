// Command motion-demo runs the animation engine headless: it submits a mix
// of eased, spring, and repeating animations, steps frames at a fixed rate,
// and prints the performance monitor's rolling metrics. Useful for smoke
// testing the runtime and for eyeballing scheduler behavior under load.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-drift/motion/pkg/config"
	"github.com/go-drift/motion/pkg/curve"
	"github.com/go-drift/motion/pkg/motion"
	"github.com/go-drift/motion/pkg/value"
)

func main() {
	var (
		configDir = flag.String("config", ".", "directory searched for motion.yaml")
		seconds   = flag.Float64("seconds", 3, "how long to run the frame loop")
		fps       = flag.Float64("fps", 60, "simulated frame rate")
		count     = flag.Int("count", 20, "number of concurrent animations to submit")
	)
	flag.Parse()

	cfg, err := config.LoadOptional(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "motion-demo: %v\n", err)
		os.Exit(1)
	}

	eng, err := motion.New(cfg.Engine, cfg.Budget)
	if err != nil {
		fmt.Fprintf(os.Stderr, "motion-demo: %v\n", err)
		os.Exit(1)
	}

	if err := submitShowcase(eng, *count); err != nil {
		fmt.Fprintf(os.Stderr, "motion-demo: %v\n", err)
		os.Exit(1)
	}

	dt := 1.0 / *fps
	frames := int(*seconds * *fps)
	start := time.Now()
	for i := 0; i < frames; i++ {
		eng.AdvanceFrame(dt)
		if (i+1)%int(*fps) == 0 {
			printSnapshot(eng, float64(i+1)*dt)
		}
	}

	snap := eng.SnapshotMetrics()
	fmt.Printf("ran %d frames in %v, %d animations still active\n",
		frames, time.Since(start).Round(time.Millisecond), snap.ActiveCount)
}

// submitShowcase fills the engine with a spread of animation styles: fades
// on an easing curve, spring-driven positions, a repeating pulse, and a
// composite transform.
func submitShowcase(eng *motion.Engine, count int) error {
	spring := curve.Bouncy()
	for i := 0; i < count; i++ {
		var req motion.Request
		switch i % 4 {
		case 0:
			req = motion.Request{
				From:       value.Target{"opacity": value.Scalar(0)},
				To:         value.Target{"opacity": value.Scalar(1)},
				Transition: motion.Transition{Duration: 0.8, Easing: motion.EasingNamed("ease-out")},
			}
		case 1:
			req = motion.Request{
				From:       value.Target{"x": value.Length(0)},
				To:         value.Target{"x": value.Length(200 + float64(i))},
				Transition: motion.Transition{Spring: &spring},
			}
		case 2:
			req = motion.Request{
				From:       value.Target{"scale": value.ScaleBy(1)},
				To:         value.Target{"scale": value.ScaleBy(1.2)},
				Transition: motion.Transition{
					Duration: 0.5,
					Easing:   motion.EasingNamed("ease-in-out"),
					Repeat:   motion.InfiniteAlternate(),
				},
			}
		default:
			from, _ := value.ParseColor("#1e88e5")
			to, _ := value.ParseColor("#e53935")
			req = motion.Request{
				From:       value.Target{"background": from},
				To:         value.Target{"background": to},
				Transition: motion.Transition{Duration: 1.2, Easing: motion.EasingBezier(0.4, 0, 0.6, 1)},
			}
		}
		if _, err := eng.Submit(req); err != nil {
			return err
		}
	}
	return nil
}

func printSnapshot(eng *motion.Engine, t float64) {
	snap := eng.SnapshotMetrics()
	fmt.Printf("t=%.1fs active=%d avg=%.3fms fps=%.1f drop=%.1f%% mem=%.1fMiB\n",
		t, snap.ActiveCount, snap.AvgFrameMillis, snap.FPS,
		snap.DropRate*100, float64(snap.MemoryBytes)/(1024*1024))
}
