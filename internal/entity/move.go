package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/pentago-client/internal/apperror"
)

type Quadrant int

const (
	TopLeft Quadrant = iota
	TopRight
	BottomLeft
	BottomRight
)

var Quadrants = [...]Quadrant{TopLeft, TopRight, BottomLeft, BottomRight}

// Origin returns the top-left cell of the quadrant.
func (that Quadrant) Origin() (int, int) {
	switch that {
	case TopRight:
		return 0, QuadrantSize
	case BottomLeft:
		return QuadrantSize, 0
	case BottomRight:
		return QuadrantSize, QuadrantSize
	default:
		return 0, 0
	}
}

func (that Quadrant) Valid() bool {
	return that >= TopLeft && that <= BottomRight
}

// String returns the engine notation: "Q" + row origin + col origin in units of 3.
func (that Quadrant) String() string {
	r0, c0 := that.Origin()
	return fmt.Sprintf("Q%d%d", r0/QuadrantSize, c0/QuadrantSize)
}

func ParseQuadrant(s string) (Quadrant, error) {
	notation := strings.ToUpper(strings.TrimSpace(s))
	for _, q := range Quadrants {
		if q.String() == notation {
			return q, nil
		}
	}

	return TopLeft, fmt.Errorf("%w: quadrant %q", apperror.ErrInvalidNotation, s)
}

type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

func (that Direction) String() string {
	if that == CounterClockwise {
		return "CCW"
	}
	return "CW"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CW":
		return Clockwise, nil
	case "CCW":
		return CounterClockwise, nil
	default:
		return Clockwise, fmt.Errorf("%w: direction %q", apperror.ErrInvalidNotation, s)
	}
}

// Move is a placement followed by a quadrant rotation.
type Move struct {
	Cell      Coord
	Quadrant  Quadrant
	Direction Direction
}

func (that Move) String() string {
	return that.Cell.String() + " " + that.Quadrant.String() + " " + that.Direction.String()
}

// ParseMove - parses "<cell> <quadrant> <direction>", fields separated by any whitespace.
func ParseMove(s string) (Move, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return Move{}, fmt.Errorf("%w: move %q", apperror.ErrInvalidNotation, s)
	}

	cell, err := ParseCoord(parts[0])
	if err != nil {
		return Move{}, err
	}

	quadrant, err := ParseQuadrant(parts[1])
	if err != nil {
		return Move{}, err
	}

	direction, err := ParseDirection(parts[2])
	if err != nil {
		return Move{}, err
	}

	return Move{Cell: cell, Quadrant: quadrant, Direction: direction}, nil
}

type Side string

const (
	SideBlack Side = "B"
	SideWhite Side = "W"
)

func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "B", "BLACK":
		return SideBlack, nil
	case "W", "WHITE":
		return SideWhite, nil
	default:
		return "", fmt.Errorf("%w: side %q", apperror.ErrInvalidNotation, s)
	}
}

func (that Side) Opponent() Side {
	if that == SideBlack {
		return SideWhite
	}
	return SideBlack
}

func (that Side) Cell() Cell {
	if that == SideBlack {
		return Black
	}
	return White
}

func SideOf(c Cell) (Side, bool) {
	switch c {
	case Black:
		return SideBlack, true
	case White:
		return SideWhite, true
	default:
		return "", false
	}
}
