package usecase

import "time"

type step struct {
	name  string
	after time.Duration
	run   func()
}

// sequence runs timed steps one after another on the orchestrator loop and calls done
// after the last one. Steps are posted back to the loop, so they never run concurrently
// with other session mutations.
type sequence struct {
	steps     []step
	done      func()
	post      func(func()) bool
	timer     *time.Timer
	cancelled bool
}

func newSequence(post func(func()) bool, done func(), steps ...step) *sequence {
	return &sequence{
		steps: steps,
		done:  done,
		post:  post,
	}
}

func (that *sequence) start() {
	that.next(0)
}

func (that *sequence) next(i int) {
	if that.cancelled {
		return
	}

	if i == len(that.steps) {
		if that.done != nil {
			that.done()
		}
		return
	}

	current := that.steps[i]
	if current.after <= 0 {
		current.run()
		that.next(i + 1)
		return
	}

	that.timer = time.AfterFunc(current.after, func() {
		that.post(func() {
			if that.cancelled {
				return
			}
			current.run()
			that.next(i + 1)
		})
	})
}

// cancel must be called on the loop. Pending steps and done are dropped.
func (that *sequence) cancel() {
	that.cancelled = true
	if that.timer != nil {
		that.timer.Stop()
	}
}
