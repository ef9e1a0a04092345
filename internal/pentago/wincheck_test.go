package pentago

import (
	"testing"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(board *entity.Board, v entity.Cell, cells ...entity.Coord) {
	for _, c := range cells {
		board.Set(c, v)
	}
}

func line(r, c, dr, dc, n int) []entity.Coord {
	cells := make([]entity.Coord, 0, n)
	for i := 0; i < n; i++ {
		cells = append(cells, entity.Coord{Row: r + dr*i, Col: c + dc*i})
	}

	return cells
}

func TestFindWinningSegment(t *testing.T) {
	t.Run("Empty board has no winner", func(t *testing.T) {
		// Given: an empty board
		var board entity.Board

		// When: checking for a win
		_, ok := FindWinningSegment(&board)

		// Then: there is none
		assert.False(t, ok)
	})

	t.Run("Four in a row is not a win", func(t *testing.T) {
		// Given: four black stones on row 2 and four white stones on a diagonal
		var board entity.Board
		fill(&board, entity.Black, line(2, 0, 0, 1, 4)...)
		fill(&board, entity.White, line(0, 5, 1, -1, 4)...)

		// When: checking for a win
		_, ok := FindWinningSegment(&board)

		// Then: there is none
		assert.False(t, ok)
	})

	t.Run("Detects each line family", func(t *testing.T) {
		cases := []struct {
			name  string
			cells []entity.Coord
			value entity.Cell
		}{
			{"row", line(3, 1, 0, 1, 5), entity.Black},
			{"column", line(0, 4, 1, 0, 5), entity.White},
			{"down-right diagonal", line(1, 1, 1, 1, 5), entity.Black},
			{"down-left diagonal", line(0, 5, 1, -1, 5), entity.White},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				// Given: five equal stones along the line
				var board entity.Board
				fill(&board, tc.value, tc.cells...)

				// When: checking for a win
				seg, ok := FindWinningSegment(&board)

				// Then: exactly that line is returned
				require.True(t, ok)
				assert.ElementsMatch(t, tc.cells, seg.Coords())

				side, _, won := Winner(&board)
				require.True(t, won)
				assert.Equal(t, tc.value, side.Cell())
			})
		}
	})

	t.Run("Mixed line is not a win", func(t *testing.T) {
		// Given: a row of five with one white stone in the middle
		var board entity.Board
		fill(&board, entity.Black, line(0, 0, 0, 1, 5)...)
		board.Set(entity.Coord{Row: 0, Col: 2}, entity.White)

		// When: checking for a win
		_, ok := FindWinningSegment(&board)

		// Then: there is none
		assert.False(t, ok)
	})

	t.Run("Full board without a five-run has no winner", func(t *testing.T) {
		// Given: a full board where pairs of columns alternate colour
		// and the pattern flips every row, so no line holds five equal stones
		var board entity.Board
		for r := 0; r < entity.BoardSize; r++ {
			for c := 0; c < entity.BoardSize; c++ {
				if ((c/2)+r)%2 == 0 {
					board[r][c] = entity.Black
				} else {
					board[r][c] = entity.White
				}
			}
		}

		// When: checking for a win
		_, ok := FindWinningSegment(&board)

		// Then: there is none, and the board counts as a draw
		assert.False(t, ok)

		terminal, winner := Outcome(&board, entity.SideBlack)
		assert.True(t, terminal)
		assert.Nil(t, winner)
	})

	t.Run("First match follows catalog order", func(t *testing.T) {
		// Given: a black row and a white column
		var board entity.Board
		fill(&board, entity.Black, line(5, 0, 0, 1, 5)...)
		fill(&board, entity.White, line(0, 5, 1, 0, 5)...)

		// When: checking for a win
		seg, ok := FindWinningSegment(&board)

		// Then: rows come first
		require.True(t, ok)
		assert.Equal(t, entity.Coord{Row: 5, Col: 0}, seg[0])
	})
}

func TestOutcome(t *testing.T) {
	t.Run("Both sides with five resolve to the mover", func(t *testing.T) {
		// Given: five black on row 0 and five white on row 5
		var board entity.Board
		fill(&board, entity.Black, line(0, 0, 0, 1, 5)...)
		fill(&board, entity.White, line(5, 0, 0, 1, 5)...)

		// When: white made the last move
		terminal, winner := Outcome(&board, entity.SideWhite)

		// Then: white wins
		require.True(t, terminal)
		require.NotNil(t, winner)
		assert.Equal(t, entity.SideWhite, *winner)
	})

	t.Run("Game goes on without a five on a partial board", func(t *testing.T) {
		var board entity.Board
		fill(&board, entity.Black, line(0, 0, 0, 1, 4)...)

		terminal, winner := Outcome(&board, entity.SideBlack)

		assert.False(t, terminal)
		assert.Nil(t, winner)
	})
}

func TestSegmentOf(t *testing.T) {
	t.Run("Finds the line of the requested colour only", func(t *testing.T) {
		// Given: a black row before a white column in catalog order
		var board entity.Board
		fill(&board, entity.Black, line(5, 0, 0, 1, 5)...)
		fill(&board, entity.White, line(0, 5, 1, 0, 5)...)

		// When: asking for white
		seg, ok := SegmentOf(&board, entity.White)

		// Then: the white column is returned
		require.True(t, ok)
		assert.ElementsMatch(t, line(0, 5, 1, 0, 5), seg.Coords())

		_, ok = SegmentOf(&board, entity.Empty)
		assert.False(t, ok)
	})
}
