package motion

// driver is the narrow contract both driving modes implement so
// pause/resume/cancel/completion behave identically on every Handle,
// whether the engine steps the animation frame by frame or a native
// facility runs it fire-and-forget.
type driver interface {
	// advance moves the record forward by dt seconds and stages any sink
	// payload. It returns true when the animation has finished.
	advance(r *record, dt float64) bool
	// pause suspends driving.
	pause(r *record)
	// resume continues driving from the suspended position.
	resume(r *record)
	// cancel stops driving without reaching the end values.
	cancel(r *record)
	// jumpToEnd stops driving and stages the exact end values, used by
	// the degradation policy to force-complete rather than drop.
	jumpToEnd(r *record)
}

// manualDriver steps records on the engine's frame tick. It is stateless;
// all state lives on the record, so one shared instance serves every
// manually driven animation without per-animation allocation.
type manualDriver struct{}

func (manualDriver) advance(r *record, dt float64) bool {
	if r.delayLeft > 0 {
		if dt < r.delayLeft {
			r.delayLeft -= dt
			return false
		}
		dt -= r.delayLeft
		r.delayLeft = 0
		if dt == 0 {
			return false
		}
	}
	if r.transition.Spring != nil {
		return r.advanceSpring(dt)
	}
	return r.advanceTimed(dt)
}

// Pausing a manual record freezes it implicitly: the scheduler skips paused
// records, so elapsed and spring state hold their exact values.
func (manualDriver) pause(*record)  {}
func (manualDriver) resume(*record) {}
func (manualDriver) cancel(*record) {}

func (manualDriver) jumpToEnd(r *record) {
	r.stageEnd()
}

var manual manualDriver
