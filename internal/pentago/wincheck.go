package pentago

import "github.com/rocketscienceinc/pentago-client/internal/entity"

// FindWinningSegment returns the first segment, in catalog order, filled with one colour.
func FindWinningSegment(board *entity.Board) (Segment, bool) {
	for _, seg := range Segments() {
		first := board.At(seg[0])
		if first != entity.Empty && filledWith(board, seg, first) {
			return seg, true
		}
	}

	return Segment{}, false
}

// SegmentOf returns the first segment filled with v.
func SegmentOf(board *entity.Board, v entity.Cell) (Segment, bool) {
	if v == entity.Empty {
		return Segment{}, false
	}

	for _, seg := range Segments() {
		if filledWith(board, seg, v) {
			return seg, true
		}
	}

	return Segment{}, false
}

// Winner reports the side owning the first winning segment.
func Winner(board *entity.Board) (entity.Side, Segment, bool) {
	seg, ok := FindWinningSegment(board)
	if !ok {
		return "", Segment{}, false
	}

	side, _ := entity.SideOf(board.At(seg[0]))

	return side, seg, true
}

// Outcome classifies a board the way the engine does after a move by mover: a five for
// the mover wins even when the rotation also completed one for the opponent; a full board
// without a five is a draw.
func Outcome(board *entity.Board, mover entity.Side) (terminal bool, winner *entity.Side) {
	black := hasFive(board, entity.Black)
	white := hasFive(board, entity.White)

	switch {
	case black && white:
		return true, &mover
	case black:
		side := entity.SideBlack
		return true, &side
	case white:
		side := entity.SideWhite
		return true, &side
	default:
		return board.Full(), nil
	}
}

func hasFive(board *entity.Board, v entity.Cell) bool {
	_, ok := SegmentOf(board, v)
	return ok
}

func filledWith(board *entity.Board, seg Segment, v entity.Cell) bool {
	for _, c := range seg {
		if board.At(c) != v {
			return false
		}
	}

	return true
}

func (that Segment) Coords() []entity.Coord {
	return that[:]
}
