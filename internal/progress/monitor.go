package progress

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

// maxPollingRatio keeps the bar short of full until the move actually arrives.
const maxPollingRatio = 0.99

type poller interface {
	PollProgress(ctx context.Context, gameID string) (entity.ProgressSnapshot, error)
}

type sink interface {
	PublishProgress(view entity.ProgressView)
}

type Config struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
	HideDelay    time.Duration
}

// Monitor polls the engine's progress endpoint while a long search runs and keeps a
// displayable view of it. Idle -> Polling on Start, Polling -> Completing on Stop, and
// Completing -> Idle after HideDelay.
type Monitor struct {
	logger *slog.Logger
	poller poller
	sink   sink
	config Config

	mu     sync.Mutex
	view   entity.ProgressView
	gen    uint64
	cancel context.CancelFunc
	hide   *time.Timer
	closed bool
}

// NewMonitor - sink may be nil.
func NewMonitor(logger *slog.Logger, poller poller, sink sink, config Config) *Monitor {
	return &Monitor{
		logger: logger.With("component", "progress"),
		poller: poller,
		sink:   sink,
		config: config,
		view:   entity.IdleProgress(),
	}
}

// Start begins polling for gameID, replacing any poller that is still running.
func (that *Monitor) Start(gameID, label string) {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return
	}

	that.reset()
	that.gen++
	gen := that.gen

	that.view = entity.ProgressView{
		GameID:  gameID,
		State:   entity.ProgressPolling,
		Visible: true,
		Label:   label,
	}

	ctx, cancel := context.WithCancel(context.Background())
	that.cancel = cancel
	view := that.view
	that.mu.Unlock()

	that.logger.Debug("progress polling started", "gameID", gameID, "label", label)
	that.publish(view)

	go that.loop(ctx, gen, gameID)
}

// Stop shows the bar full, then hides it after HideDelay. It does not block.
func (that *Monitor) Stop() {
	that.mu.Lock()
	if that.closed || that.view.State == entity.ProgressIdle {
		that.mu.Unlock()
		return
	}

	that.reset()
	that.gen++
	gen := that.gen

	that.view.State = entity.ProgressCompleting
	that.view.Ratio = 1
	that.view.Percent = 100
	that.view.Determinate = true
	view := that.view

	that.hide = time.AfterFunc(that.config.HideDelay, func() {
		that.mu.Lock()
		if that.gen != gen {
			that.mu.Unlock()
			return
		}
		that.view = entity.IdleProgress()
		idle := that.view
		that.mu.Unlock()

		that.publish(idle)
	})
	that.mu.Unlock()

	that.publish(view)
}

// Close cancels the poller and any pending hide. The monitor cannot be restarted.
func (that *Monitor) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.reset()
	that.gen++
	that.closed = true
	that.view = entity.IdleProgress()
}

func (that *Monitor) View() entity.ProgressView {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.view
}

// reset must be called with mu held.
func (that *Monitor) reset() {
	if that.cancel != nil {
		that.cancel()
		that.cancel = nil
	}

	if that.hide != nil {
		that.hide.Stop()
		that.hide = nil
	}
}

func (that *Monitor) loop(ctx context.Context, gen uint64, gameID string) {
	ticker := time.NewTicker(that.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.tick(ctx, gen, gameID)
		}
	}
}

func (that *Monitor) tick(ctx context.Context, gen uint64, gameID string) {
	log := that.logger.With("method", "tick", "gameID", gameID)

	pollCtx, cancel := context.WithTimeout(ctx, that.config.PollTimeout)
	defer cancel()

	snapshot, err := that.poller.PollProgress(pollCtx, gameID)
	if err != nil {
		log.Debug("progress poll failed", "error", err)
		return
	}

	that.mu.Lock()
	if that.gen != gen || that.view.State != entity.ProgressPolling {
		that.mu.Unlock()
		return
	}

	if !apply(&that.view, snapshot) {
		that.mu.Unlock()
		return
	}
	view := that.view
	that.mu.Unlock()

	that.publish(view)
}

// apply folds one snapshot into view. A snapshot without an engine kind means the search
// has not started yet and is ignored.
func apply(view *entity.ProgressView, snapshot entity.ProgressSnapshot) bool {
	if snapshot.Engine == "" {
		return false
	}

	switch {
	case snapshot.SimsDone != nil && snapshot.SimsTarget != nil && *snapshot.SimsTarget > 0:
		view.Ratio = ratio(*snapshot.SimsDone, *snapshot.SimsTarget)
		view.Determinate = true
		view.Annotation = fmt.Sprintf("%d / %d sims", *snapshot.SimsDone, *snapshot.SimsTarget)
	case snapshot.ElapsedMs != nil && snapshot.TimeMs != nil && *snapshot.TimeMs > 0:
		view.Ratio = ratio(*snapshot.ElapsedMs, *snapshot.TimeMs)
		view.Determinate = true
		view.Annotation = fmt.Sprintf("%dms / %dms", *snapshot.ElapsedMs, *snapshot.TimeMs)
	default:
		view.Ratio = 0
		view.Determinate = false
		view.Annotation = ""
	}

	view.Percent = int(math.Round(view.Ratio * 100))

	return true
}

func ratio(done, total int) float64 {
	return math.Max(0, math.Min(maxPollingRatio, float64(done)/float64(total)))
}

func (that *Monitor) publish(view entity.ProgressView) {
	if that.sink != nil {
		that.sink.PublishProgress(view)
	}
}
