package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/pentago-client/internal/apperror"
)

const (
	BoardSize    = 6
	QuadrantSize = 3

	columns = "ABCDEF"
	rows    = "123456"
)

type Cell int

const (
	Empty Cell = iota
	Black
	White
)

var ErrInvalidCell = errors.New("invalid cell")

// Board is the 6x6 grid, indexed [row][col].
type Board [BoardSize][BoardSize]Cell

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Coord) Valid() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// String returns the engine notation of the cell, e.g. "C3".
func (that Coord) String() string {
	if !that.Valid() {
		return "??"
	}

	return string(columns[that.Col]) + string(rows[that.Row])
}

// ParseCoord - parses "<column A-F><row 1-6>".
func ParseCoord(s string) (Coord, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return Coord{}, fmt.Errorf("%w: cell %q", apperror.ErrInvalidNotation, s)
	}

	col := strings.IndexByte(columns, s[0])
	row := strings.IndexByte(rows, s[1])
	if col < 0 || row < 0 {
		return Coord{}, fmt.Errorf("%w: cell %q", apperror.ErrInvalidNotation, s)
	}

	return Coord{Row: row, Col: col}, nil
}

func (that *Board) At(c Coord) Cell {
	return that[c.Row][c.Col]
}

func (that *Board) Set(c Coord, v Cell) {
	that[c.Row][c.Col] = v
}

func (that *Board) IsEmpty(c Coord) bool {
	return c.Valid() && that[c.Row][c.Col] == Empty
}

// Stones - number of occupied cells, which is also the number of moves played.
func (that *Board) Stones() int {
	n := 0
	for r := range that {
		for c := range that[r] {
			if that[r][c] != Empty {
				n++
			}
		}
	}

	return n
}

func (that *Board) Full() bool {
	return that.Stones() == BoardSize*BoardSize
}

// Rotate turns one quadrant by a quarter turn in place.
func (that *Board) Rotate(q Quadrant, d Direction) {
	r0, c0 := q.Origin()

	var sub [QuadrantSize][QuadrantSize]Cell
	for i := 0; i < QuadrantSize; i++ {
		for j := 0; j < QuadrantSize; j++ {
			sub[i][j] = that[r0+i][c0+j]
		}
	}

	for i := 0; i < QuadrantSize; i++ {
		for j := 0; j < QuadrantSize; j++ {
			if d == Clockwise {
				that[r0+j][c0+QuadrantSize-1-i] = sub[i][j]
			} else {
				that[r0+QuadrantSize-1-j][c0+i] = sub[i][j]
			}
		}
	}
}

// Apply returns the board after side places its stone and rotates. The receiver is not modified.
func (that Board) Apply(move Move, side Side) (Board, error) {
	if !move.Cell.Valid() {
		return that, fmt.Errorf("%w: %v", ErrInvalidCell, move.Cell)
	}

	if that.At(move.Cell) != Empty {
		return that, apperror.ErrCellOccupied
	}

	that.Set(move.Cell, side.Cell())
	that.Rotate(move.Quadrant, move.Direction)

	return that, nil
}

// Grid converts the board to the engine wire shape.
func (that *Board) Grid() [][]int {
	grid := make([][]int, BoardSize)
	for r := range that {
		grid[r] = make([]int, BoardSize)
		for c := range that[r] {
			grid[r][c] = int(that[r][c])
		}
	}

	return grid
}

func BoardFromGrid(grid [][]int) (Board, error) {
	var board Board

	if len(grid) != BoardSize {
		return board, fmt.Errorf("%w: grid has %d rows", ErrInvalidCell, len(grid))
	}

	for r, row := range grid {
		if len(row) != BoardSize {
			return board, fmt.Errorf("%w: row %d has %d cells", ErrInvalidCell, r, len(row))
		}

		for c, v := range row {
			if v < int(Empty) || v > int(White) {
				return board, fmt.Errorf("%w: value %d at %d,%d", ErrInvalidCell, v, r, c)
			}
			board[r][c] = Cell(v)
		}
	}

	return board, nil
}
