package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/pentago-client/internal/apperror"
	"github.com/rocketscienceinc/pentago-client/internal/entity"
	"github.com/rocketscienceinc/pentago-client/internal/pentago"
)

const eventBuffer = 64

type gateway interface {
	CreateGame(ctx context.Context) (string, entity.Position, error)
	State(ctx context.Context, gameID string) (entity.Position, error)
	SubmitMove(ctx context.Context, gameID string, move entity.Move) (entity.Position, error)
	RequestEngineMove(ctx context.Context, gameID string, req entity.EngineRequest) (entity.EngineReply, error)
}

type progressMonitor interface {
	Start(gameID, label string)
	Stop()
	Close()
	View() entity.ProgressView
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	DeleteByID(ctx context.Context, id string) error
}

type resultRepo interface {
	Record(ctx context.Context, session *entity.Session) error
}

type publisher interface {
	PublishSession(view entity.SessionView)
}

// Timing holds the fixed delays of the move animation.
type Timing struct {
	SettleDelay    time.Duration
	RotateDuration time.Duration
}

// turnKey identifies one turn of one session. An engine request is dispatched at most once per key.
type turnKey struct {
	gen    uint64
	gameID string
	ply    int
}

// Orchestrator owns the game session. All state below the channels is touched only by the
// goroutine running Run; public methods and request completions are posted to it as events.
type Orchestrator struct {
	logger    *slog.Logger
	gateway   gateway
	monitor   progressMonitor
	persister *persister
	publisher publisher
	timing    Timing

	events  chan func()
	stopped chan struct{}

	ctx        context.Context
	session    *entity.Session
	lineup     entity.Lineup
	selection  *pentago.Selection
	animation  *entity.Animation
	lastErr    error
	refusal    error
	lease      lease
	gen        uint64
	dispatched turnKey
	pending    *sequence
}

func NewOrchestrator(
	logger *slog.Logger,
	gateway gateway,
	monitor progressMonitor,
	sessions sessionRepo,
	results resultRepo,
	publisher publisher,
	lineup entity.Lineup,
	timing Timing,
) *Orchestrator {
	return &Orchestrator{
		logger:    logger.With("component", "orchestrator"),
		gateway:   gateway,
		monitor:   monitor,
		persister: newPersister(logger, sessions, results),
		publisher: publisher,
		timing:    timing,

		events:  make(chan func(), eventBuffer),
		stopped: make(chan struct{}),

		ctx:       context.Background(),
		lineup:    lineup,
		selection: pentago.NewSelection(),
	}
}

// Run processes events until ctx is done. It must be called exactly once.
func (that *Orchestrator) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	that.ctx = ctx

	flushed := make(chan struct{})
	go that.persister.run(ctx, flushed)

	defer close(that.stopped)
	defer func() { <-flushed }()
	defer that.monitor.Close()

	log.Info("orchestrator started")

	for {
		select {
		case <-ctx.Done():
			if that.pending != nil {
				that.pending.cancel()
			}
			log.Info("orchestrator stopped")
			return
		case event := <-that.events:
			event()
		}
	}
}

// NewGame asks the engine for a fresh game and plays it with lineup. A move in flight is
// abandoned; a second NewGame while the first is still being created is rejected.
func (that *Orchestrator) NewGame(ctx context.Context, lineup entity.Lineup) (bool, error) {
	if err := lineup.Validate(); err != nil {
		return false, fmt.Errorf("failed to validate lineup: %w", err)
	}

	var accepted bool
	err := that.call(ctx, func() {
		accepted = that.settle(that.startNewGame(lineup))
	})

	return accepted, err
}

func (that *Orchestrator) SelectCell(ctx context.Context, cell entity.Coord) (bool, error) {
	var accepted bool
	err := that.call(ctx, func() {
		accepted = that.settleSelection(that.selection.SelectCell(that.gate(), cell))
		if accepted {
			that.publish()
		}
	})

	return accepted, err
}

func (that *Orchestrator) SelectQuadrant(ctx context.Context, quadrant entity.Quadrant) (bool, error) {
	var accepted bool
	err := that.call(ctx, func() {
		accepted = that.settleSelection(that.selection.SelectQuadrant(that.gate(), quadrant))
		if accepted {
			that.publish()
		}
	})

	return accepted, err
}

// Rotate completes the human move with direction and submits it.
func (that *Orchestrator) Rotate(ctx context.Context, direction entity.Direction) (bool, error) {
	var accepted bool
	err := that.call(ctx, func() {
		accepted = that.settle(that.submitHumanMove(direction))
	})

	return accepted, err
}

// SetEngineConfig rebinds the engine of side. It never starts a second request for a turn
// that already had one.
func (that *Orchestrator) SetEngineConfig(ctx context.Context, side entity.Side, cfg entity.EngineConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("failed to validate engine config: %w", err)
	}

	return that.call(ctx, func() {
		that.lineup.SetConfig(side, cfg)
		that.publish()
		that.evaluateTurn()
	})
}

// ResumeEngine reloads the position from the engine and, if an engine side is to move,
// asks for its move again. It is the manual retry after a failed engine request.
func (that *Orchestrator) ResumeEngine(ctx context.Context) (bool, error) {
	var accepted bool
	err := that.call(ctx, func() {
		accepted = that.settle(that.resync())
	})

	return accepted, err
}

func (that *Orchestrator) Snapshot(ctx context.Context) (entity.SessionView, error) {
	var view entity.SessionView
	err := that.call(ctx, func() {
		view = that.view()
	})

	return view, err
}

func (that *Orchestrator) call(ctx context.Context, event func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		event()
	}

	select {
	case that.events <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-that.stopped:
		return apperror.ErrStopped
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-that.stopped:
		return apperror.ErrStopped
	}
}

// settle records why an input was refused, or clears the reason when it was taken.
func (that *Orchestrator) settle(reason error) bool {
	that.refusal = reason
	return reason == nil
}

func (that *Orchestrator) settleSelection(accepted bool) bool {
	if accepted {
		return that.settle(nil)
	}

	return that.settle(that.selection.Refusal())
}

// post hands an event to the loop from a timer or request goroutine.
func (that *Orchestrator) post(event func()) bool {
	select {
	case that.events <- event:
		return true
	case <-that.stopped:
		return false
	}
}

func (that *Orchestrator) startNewGame(lineup entity.Lineup) error {
	log := that.logger.With("method", "startNewGame")

	if that.lease.HeldBy(apperror.KindInit) {
		log.Debug("new game already being created")
		return apperror.ErrBusy
	}

	that.abandon()

	token, _ := that.lease.Acquire(apperror.KindInit)
	gen := that.gen
	ctx := that.ctx

	go func() {
		gameID, pos, err := that.gateway.CreateGame(ctx)
		that.post(func() {
			that.onGameCreated(gen, token, lineup, gameID, pos, err)
		})
	}()

	that.publish()

	return nil
}

// abandon invalidates everything in flight for the current session.
func (that *Orchestrator) abandon() {
	that.gen++

	if that.pending != nil {
		that.pending.cancel()
		that.pending = nil
	}

	if that.lease.Busy() {
		that.lease.Revoke()
		that.monitor.Stop()
	}

	if that.session != nil && !that.session.IsTerminal() {
		that.persister.discard(that.session)
	}

	that.selection.Reset()
	that.animation = nil
}

func (that *Orchestrator) onGameCreated(gen, token uint64, lineup entity.Lineup, gameID string, pos entity.Position, err error) {
	log := that.logger.With("method", "onGameCreated")

	if gen != that.gen {
		return
	}

	that.lease.Release(token)

	if err != nil {
		that.fail(apperror.KindInit, err)
		that.publish()
		return
	}

	that.session = &entity.Session{
		ID:        gameID,
		Position:  pos,
		Mode:      lineup.Mode,
		Human:     lineup.Human,
		UpdatedAt: time.Now().UTC(),
	}
	that.lineup = lineup
	that.selection.Reset()
	that.animation = nil
	that.lastErr = nil
	that.refusal = nil
	that.dispatched = turnKey{}

	log.Info("game created", "gameID", gameID, "mode", lineup.Mode, "toMove", pos.ToMove)

	that.store()
	that.publish()
	that.evaluateTurn()
}

// evaluateTurn dispatches the engine when the session is live, an engine side is to move,
// nothing is in flight and this turn has not been dispatched before.
func (that *Orchestrator) evaluateTurn() {
	if that.session == nil || that.session.IsTerminal() || that.lease.Busy() {
		return
	}

	cfg, ok := that.lineup.ConfigFor(that.session.Position.ToMove)
	if !ok {
		return
	}

	key := turnKey{gen: that.gen, gameID: that.session.ID, ply: that.session.Plies()}
	if that.dispatched == key {
		return
	}

	that.dispatched = key
	that.requestEngineMove(cfg)
}

func (that *Orchestrator) requestEngineMove(cfg entity.EngineConfig) {
	log := that.logger.With("method", "requestEngineMove")

	token, ok := that.lease.Acquire(apperror.KindBot)
	if !ok {
		return
	}

	gen := that.gen
	ctx := that.ctx
	gameID := that.session.ID
	mover := that.session.Position.ToMove
	req := cfg.Request()

	that.lastErr = nil

	if cfg.LongRunning() {
		that.monitor.Start(gameID, cfg.Label())
	}

	log.Info("requesting engine move", "gameID", gameID, "side", mover, "engine", cfg.Kind, "depth", req.Depth)

	go func() {
		reply, err := that.gateway.RequestEngineMove(ctx, gameID, req)
		that.post(func() {
			that.onEngineMove(gen, token, mover, reply, err)
		})
	}()

	that.publish()
}

func (that *Orchestrator) onEngineMove(gen, token uint64, mover entity.Side, reply entity.EngineReply, err error) {
	log := that.logger.With("method", "onEngineMove")

	if gen != that.gen {
		log.Debug("dropping engine move of an abandoned game")
		return
	}

	var move entity.Move
	if err == nil {
		move, err = entity.ParseMove(reply.Move)
	}

	if err != nil {
		that.monitor.Stop()
		that.lease.Release(token)
		that.fail(apperror.KindBot, err)
		that.publish()
		return
	}

	log.Info("engine moved", "gameID", that.session.ID, "side", mover, "move", move.String())

	that.play(token, newSequence(that.post, nil,
		step{name: "select", run: func() {
			that.selection.Show(move)
			that.publish()
		}},
		step{name: "rotate", after: that.timing.SettleDelay, run: func() {
			that.animate(move)
		}},
		step{name: "commit", after: that.timing.RotateDuration, run: func() {
			that.monitor.Stop()
			that.commit(mover, move, reply.Position)
		}},
	))
}

func (that *Orchestrator) submitHumanMove(direction entity.Direction) error {
	log := that.logger.With("method", "submitHumanMove")

	move, ok := that.selection.ChooseDirection(that.gate(), direction)
	if !ok {
		return that.selection.Refusal()
	}

	token, ok := that.lease.Acquire(apperror.KindPlay)
	if !ok {
		that.selection.Unlock()
		return apperror.ErrBusy
	}

	gen := that.gen
	ctx := that.ctx
	gameID := that.session.ID
	mover := that.session.Position.ToMove

	that.lastErr = nil
	that.animate(move)

	log.Info("submitting move", "gameID", gameID, "side", mover, "move", move.String())

	go func() {
		pos, err := that.gateway.SubmitMove(ctx, gameID, move)
		that.post(func() {
			that.onMoveSubmitted(gen, token, mover, move, pos, err)
		})
	}()

	return nil
}

func (that *Orchestrator) onMoveSubmitted(gen, token uint64, mover entity.Side, move entity.Move, pos entity.Position, err error) {
	if gen != that.gen {
		return
	}

	if err != nil {
		that.selection.Unlock()
		that.animation = nil
		that.lease.Release(token)
		that.fail(apperror.KindPlay, err)
		that.publish()
		return
	}

	that.play(token, newSequence(that.post, nil,
		step{name: "commit", after: that.timing.RotateDuration, run: func() {
			that.commit(mover, move, pos)
		}},
	))
}

// play runs seq and releases the lease after its last step.
func (that *Orchestrator) play(token uint64, seq *sequence) {
	seq.done = func() {
		that.pending = nil
		that.lease.Release(token)
		that.publish()
		that.evaluateTurn()
	}

	that.pending = seq
	seq.start()
}

func (that *Orchestrator) animate(move entity.Move) {
	that.animation = &entity.Animation{
		Quadrant:  move.Quadrant.String(),
		Direction: move.Direction.String(),
		Stage:     entity.StageRotating,
	}
	that.publish()
}

// commit installs the position reported by the engine after mover played move.
func (that *Orchestrator) commit(mover entity.Side, move entity.Move, pos entity.Position) {
	log := that.logger.With("method", "commit", "gameID", that.session.ID)

	that.crossCheck(log, mover, move, pos)

	that.session.WinningSegment = classify(&pos)
	that.session.Position = pos
	that.session.UpdatedAt = time.Now().UTC()

	that.selection.Complete()
	that.animation = nil
	that.refusal = nil

	if pos.Terminal {
		log.Info("game finished", "winner", that.session.WinnerText(), "plies", that.session.Plies())
	}

	that.store()
	that.publish()
}

// crossCheck replays move locally and logs when the engine's answer disagrees.
func (that *Orchestrator) crossCheck(log *slog.Logger, mover entity.Side, move entity.Move, pos entity.Position) {
	expected, err := that.session.Position.Board.Apply(move, mover)
	if err != nil {
		log.Warn("move does not apply to the local board", "move", move.String(), "error", err)
		return
	}

	if expected != pos.Board {
		log.Warn("engine board differs from local replay", "move", move.String())
		return
	}

	terminal, winner := pentago.Outcome(&expected, mover)
	if terminal != pos.Terminal || !sameSide(winner, pos.Winner) {
		log.Warn("engine outcome differs from local check", "terminal", pos.Terminal, "localTerminal", terminal)
	}
}

func (that *Orchestrator) resync() error {
	log := that.logger.With("method", "resync")

	if that.session == nil {
		return apperror.ErrNoSession
	}

	token, ok := that.lease.Acquire(apperror.KindBot)
	if !ok {
		return apperror.ErrBusy
	}

	gen := that.gen
	ctx := that.ctx
	gameID := that.session.ID

	that.dispatched = turnKey{}
	that.lastErr = nil

	log.Info("resuming", "gameID", gameID)

	go func() {
		pos, err := that.gateway.State(ctx, gameID)
		that.post(func() {
			that.onResynced(gen, token, pos, err)
		})
	}()

	that.publish()

	return nil
}

func (that *Orchestrator) onResynced(gen, token uint64, pos entity.Position, err error) {
	if gen != that.gen {
		return
	}

	that.lease.Release(token)

	if err != nil {
		that.fail(apperror.KindBot, err)
		that.publish()
		return
	}

	if that.session.Position.Board != pos.Board || that.session.Position.ToMove != pos.ToMove {
		that.logger.Warn("position changed on the engine side", "gameID", that.session.ID)
		that.selection.Reset()
	}

	that.session.WinningSegment = classify(&pos)
	that.session.Position = pos
	that.session.UpdatedAt = time.Now().UTC()

	that.store()
	that.publish()
	that.evaluateTurn()
}

func (that *Orchestrator) fail(kind apperror.Kind, err error) {
	sessionErr := apperror.NewSessionError(kind, err)

	that.logger.Error("request failed", "kind", kind, "error", sessionErr)

	that.lastErr = sessionErr
}

// store queues the session for persistence. Storage failures are logged and do not affect play.
func (that *Orchestrator) store() {
	that.persister.save(that.session)
}

func (that *Orchestrator) gate() pentago.Gate {
	if that.session == nil {
		return pentago.Gate{Busy: that.lease.Busy()}
	}

	return pentago.Gate{
		Terminal:  that.session.IsTerminal(),
		HumanTurn: that.lineup.IsHuman(that.session.Position.ToMove),
		Busy:      that.lease.Busy(),
		Board:     &that.session.Position.Board,
	}
}

func (that *Orchestrator) view() entity.SessionView {
	view := entity.SessionView{
		Lineup:    that.lineup,
		Selection: that.selection.View(),
		Busy:      that.lease.Busy(),
		Progress:  that.monitor.View(),
	}

	if that.session != nil {
		session := snapshotSession(that.session)
		view.Session = &session
	}

	if that.animation != nil {
		animation := *that.animation
		view.Animation = &animation
	}

	if kind, ok := apperror.KindOf(that.lastErr); ok {
		view.LastError = &entity.ErrorView{Kind: string(kind), Message: errors.Unwrap(that.lastErr).Error()}
	}

	if that.refusal != nil {
		view.Refusal = that.refusal.Error()
	}

	return view
}

func (that *Orchestrator) publish() {
	if that.publisher != nil {
		that.publisher.PublishSession(that.view())
	}
}

// classify returns the winning segment of a terminal position. The engine's winner is kept;
// a terminal position reported without one gets the side that owns a five on the board.
func classify(pos *entity.Position) []entity.Coord {
	if !pos.Terminal {
		return nil
	}

	if pos.Winner == nil {
		side, seg, ok := pentago.Winner(&pos.Board)
		if !ok {
			return nil
		}
		pos.Winner = &side
		return seg.Coords()
	}

	if seg, ok := pentago.SegmentOf(&pos.Board, pos.Winner.Cell()); ok {
		return seg.Coords()
	}

	return nil
}

func sameSide(a, b *entity.Side) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
