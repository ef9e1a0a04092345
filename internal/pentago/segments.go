package pentago

import (
	"sync"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

// WinLength - stones in a row needed to win.
const WinLength = 5

// Segment is one straight run of WinLength cells.
type Segment [WinLength]entity.Coord

type step struct {
	dr, dc int
}

// Scan order of the four line families. It fixes the order of Segments().
var directions = [...]step{
	{0, 1},  // row
	{1, 0},  // column
	{1, 1},  // down-right
	{1, -1}, // down-left
}

var (
	catalogOnce sync.Once
	catalog     []Segment
)

// Segments returns every 5-cell line of the board: rows, then columns, then diagonals
// scanned by start cell with down-right before down-left. The slice is shared, do not modify it.
func Segments() []Segment {
	catalogOnce.Do(func() {
		catalog = buildSegments(entity.BoardSize)
	})

	return catalog
}

func buildSegments(size int) []Segment {
	seen := make(map[Segment]struct{})
	segments := make([]Segment, 0, 32)

	add := func(r, c int, d step) {
		endR, endC := r+d.dr*(WinLength-1), c+d.dc*(WinLength-1)
		if endR < 0 || endR >= size || endC < 0 || endC >= size {
			return
		}

		var seg Segment
		for i := range seg {
			seg[i] = entity.Coord{Row: r + d.dr*i, Col: c + d.dc*i}
		}

		key := canonical(seg)
		if _, ok := seen[key]; ok {
			return
		}

		seen[key] = struct{}{}
		segments = append(segments, seg)
	}

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			add(r, c, directions[0])
		}
	}

	for c := 0; c < size; c++ {
		for r := 0; r < size; r++ {
			add(r, c, directions[1])
		}
	}

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			add(r, c, directions[2])
			add(r, c, directions[3])
		}
	}

	return segments
}

// canonical orders the cells so that a line and its reverse share one key.
func canonical(seg Segment) Segment {
	first, last := seg[0], seg[WinLength-1]
	if last.Row < first.Row || (last.Row == first.Row && last.Col < first.Col) {
		for i, j := 0, WinLength-1; i < j; i, j = i+1, j-1 {
			seg[i], seg[j] = seg[j], seg[i]
		}
	}

	return seg
}
