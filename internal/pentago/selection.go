package pentago

import (
	"github.com/rocketscienceinc/pentago-client/internal/apperror"
	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

// Gate is what the selection machine needs to know about the session when an input arrives.
type Gate struct {
	Terminal bool
	// HumanTurn is false whenever the side to move is engine-controlled, including every
	// turn in engine-vs-engine mode.
	HumanTurn bool
	Busy      bool
	Board     *entity.Board
}

// closed returns why no input can be taken right now, or nil.
func (that Gate) closed() error {
	switch {
	case that.Board == nil:
		return apperror.ErrNoSession
	case that.Terminal:
		return apperror.ErrGameFinished
	case that.Busy:
		return apperror.ErrBusy
	default:
		return nil
	}
}

// Selection tracks two-stage move entry: pick an empty cell, pick a quadrant, pick a direction.
// Inputs that do not fit the current phase are ignored and reported as false; Refusal
// then says why.
type Selection struct {
	phase    entity.Phase
	cell     *entity.Coord
	quadrant *entity.Quadrant
	locked   bool
	refusal  error
}

func NewSelection() *Selection {
	return &Selection{phase: entity.PhasePlace}
}

func (that *Selection) SelectCell(gate Gate, c entity.Coord) bool {
	if err := that.admit(gate, entity.PhasePlace); err != nil {
		return that.refuse(err)
	}

	if !gate.HumanTurn {
		return that.refuse(apperror.ErrNotYourTurn)
	}

	if !gate.Board.IsEmpty(c) {
		return that.refuse(apperror.ErrCellOccupied)
	}

	that.cell = &c
	that.quadrant = nil
	that.phase = entity.PhaseRotate

	return that.refuse(nil)
}

func (that *Selection) SelectQuadrant(gate Gate, q entity.Quadrant) bool {
	if err := that.admit(gate, entity.PhaseRotate); err != nil {
		return that.refuse(err)
	}

	if !q.Valid() {
		return that.refuse(apperror.ErrInvalidNotation)
	}

	that.quadrant = &q

	return that.refuse(nil)
}

// ChooseDirection completes the move and locks the machine until Complete or Unlock.
func (that *Selection) ChooseDirection(gate Gate, d entity.Direction) (entity.Move, bool) {
	if err := that.admit(gate, entity.PhaseRotate); err != nil {
		return entity.Move{}, that.refuse(err)
	}

	if that.cell == nil || that.quadrant == nil {
		return entity.Move{}, that.refuse(apperror.ErrWrongPhase)
	}

	that.locked = true

	return entity.Move{Cell: *that.cell, Quadrant: *that.quadrant, Direction: d}, that.refuse(nil)
}

// Refusal is the reason the last input was ignored, or nil if it was taken.
func (that *Selection) Refusal() error {
	return that.refusal
}

func (that *Selection) admit(gate Gate, phase entity.Phase) error {
	if err := gate.closed(); err != nil {
		return err
	}

	if that.locked {
		return apperror.ErrBusy
	}

	if that.phase != phase {
		return apperror.ErrWrongPhase
	}

	return nil
}

// refuse records reason and reports whether the input was taken.
func (that *Selection) refuse(reason error) bool {
	that.refusal = reason
	return reason == nil
}

// Show displays a move chosen elsewhere, as if it had been entered here.
func (that *Selection) Show(move entity.Move) {
	cell, quadrant := move.Cell, move.Quadrant

	that.cell = &cell
	that.quadrant = &quadrant
	that.phase = entity.PhaseRotate
	that.locked = true
}

// Complete is called once the move is committed.
func (that *Selection) Complete() {
	that.Reset()
}

// Unlock keeps the chosen cell and quadrant so the move can be retried.
func (that *Selection) Unlock() {
	that.locked = false
}

func (that *Selection) Reset() {
	that.phase = entity.PhasePlace
	that.cell = nil
	that.quadrant = nil
	that.locked = false
	that.refusal = nil
}

func (that *Selection) Phase() entity.Phase {
	return that.phase
}

func (that *Selection) Locked() bool {
	return that.locked
}

func (that *Selection) View() entity.SelectionView {
	view := entity.SelectionView{
		Phase:  that.phase,
		Locked: that.locked,
	}

	if that.cell != nil {
		c := *that.cell
		view.Cell = &c
	}

	if that.quadrant != nil {
		q := *that.quadrant
		view.Quadrant = &q
	}

	return view
}
