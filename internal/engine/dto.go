package engine

import (
	"fmt"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

type stateDTO struct {
	Grid     [][]int `json:"grid"`
	ToMove   string  `json:"to_move"`
	Terminal bool    `json:"terminal"`
	Winner   *string `json:"winner"`
}

type newGameResponse struct {
	GameID string   `json:"game_id"`
	State  stateDTO `json:"state"`
}

type stateResponse struct {
	State stateDTO `json:"state"`
}

type playRequest struct {
	Cell      string `json:"cell"`
	Quadrant  string `json:"quadrant"`
	Direction string `json:"direction"`
}

type botResponse struct {
	Move   string   `json:"move"`
	State  stateDTO `json:"state"`
	Engine string   `json:"engine,omitempty"`
}

type progressResponse struct {
	Engine     *string `json:"engine"`
	Done       bool    `json:"done"`
	ElapsedMs  *int    `json:"elapsed_ms"`
	TimeMs     *int    `json:"time_ms"`
	SimsTarget *int    `json:"sims_target"`
	SimsDone   *int    `json:"sims_done"`
}

func (that stateDTO) toPosition() (entity.Position, error) {
	board, err := entity.BoardFromGrid(that.Grid)
	if err != nil {
		return entity.Position{}, fmt.Errorf("failed to decode grid: %w", err)
	}

	toMove, err := entity.ParseSide(that.ToMove)
	if err != nil {
		return entity.Position{}, fmt.Errorf("failed to decode side to move: %w", err)
	}

	pos := entity.Position{
		Board:    board,
		ToMove:   toMove,
		Terminal: that.Terminal,
	}

	if that.Winner != nil {
		winner, err := entity.ParseSide(*that.Winner)
		if err != nil {
			return entity.Position{}, fmt.Errorf("failed to decode winner: %w", err)
		}
		pos.Winner = &winner
	}

	return pos, nil
}

func (that progressResponse) toSnapshot() entity.ProgressSnapshot {
	snapshot := entity.ProgressSnapshot{
		SimsDone:   that.SimsDone,
		SimsTarget: that.SimsTarget,
		ElapsedMs:  that.ElapsedMs,
		TimeMs:     that.TimeMs,
	}

	if that.Engine != nil {
		snapshot.Engine = entity.EngineKind(*that.Engine)
	}

	return snapshot
}
