package usecase

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

const (
	storeTimeout = 2 * time.Second
	storeBuffer  = 64
)

type persistJob struct {
	session entity.Session
	// discard removes a session that was abandoned before it finished.
	discard bool
}

// persister writes sessions in the order they were queued, on its own goroutine, so that
// slow storage never holds up the event loop.
type persister struct {
	logger   *slog.Logger
	sessions sessionRepo
	results  resultRepo
	jobs     chan persistJob
}

func newPersister(logger *slog.Logger, sessions sessionRepo, results resultRepo) *persister {
	return &persister{
		logger:   logger.With("component", "persister"),
		sessions: sessions,
		results:  results,
		jobs:     make(chan persistJob, storeBuffer),
	}
}

// save queues a copy of session. It never blocks; when the queue is full the write is dropped.
func (that *persister) save(session *entity.Session) {
	that.enqueue(persistJob{session: snapshotSession(session)})
}

func (that *persister) discard(session *entity.Session) {
	that.enqueue(persistJob{session: snapshotSession(session), discard: true})
}

func (that *persister) enqueue(job persistJob) {
	select {
	case that.jobs <- job:
	default:
		that.logger.Warn("persist queue full, write dropped", "gameID", job.session.ID, "discard", job.discard)
	}
}

// run writes queued jobs until ctx is done, then flushes what is left. A write is bounded by
// storeTimeout alone so that shutdown does not cut it short.
func (that *persister) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	writeCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case job := <-that.jobs:
					that.write(writeCtx, job)
				default:
					return
				}
			}
		case job := <-that.jobs:
			that.write(writeCtx, job)
		}
	}
}

func (that *persister) write(parent context.Context, job persistJob) {
	log := that.logger.With("method", "write", "gameID", job.session.ID)

	ctx, cancel := context.WithTimeout(parent, storeTimeout)
	defer cancel()

	if job.discard {
		if err := that.sessions.DeleteByID(ctx, job.session.ID); err != nil {
			log.Error("failed to delete abandoned session", "error", err)
		}
		return
	}

	if err := that.sessions.CreateOrUpdate(ctx, &job.session); err != nil {
		log.Error("failed to save session", "error", err)
	}

	if !job.session.IsTerminal() {
		return
	}

	if err := that.results.Record(ctx, &job.session); err != nil {
		log.Error("failed to record result", "error", err)
	}
}

func snapshotSession(session *entity.Session) entity.Session {
	copied := *session
	copied.WinningSegment = slices.Clone(session.WinningSegment)
	if session.Position.Winner != nil {
		winner := *session.Position.Winner
		copied.Position.Winner = &winner
	}

	return copied
}
