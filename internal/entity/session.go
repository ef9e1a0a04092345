package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/rocketscienceinc/pentago-client/internal/apperror"
)

type Mode string

const (
	HumanVsEngine  Mode = "human-vs-engine"
	EngineVsEngine Mode = "engine-vs-engine"
)

func ParseMode(s string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(s))); mode {
	case HumanVsEngine, EngineVsEngine:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: mode %q", apperror.ErrInvalidNotation, s)
	}
}

// Position is the engine's view of a game.
type Position struct {
	Board    Board `json:"grid"`
	ToMove   Side  `json:"to_move"`
	Terminal bool  `json:"terminal"`
	Winner   *Side `json:"winner"`
}

// Lineup says who plays each side and how the engine sides are configured.
type Lineup struct {
	Mode   Mode         `json:"mode"`
	Human  Side         `json:"human"`
	Engine EngineConfig `json:"engine"`
	Black  EngineConfig `json:"black"`
	White  EngineConfig `json:"white"`
}

// ConfigFor returns the engine config bound to side, or false if side is played by the human.
func (that *Lineup) ConfigFor(side Side) (EngineConfig, bool) {
	if that.Mode == EngineVsEngine {
		if side == SideBlack {
			return that.Black, true
		}
		return that.White, true
	}

	if side == that.Human {
		return EngineConfig{}, false
	}

	return that.Engine, true
}

// SetConfig binds cfg to side. In human-vs-engine mode there is a single engine config and side is ignored.
func (that *Lineup) SetConfig(side Side, cfg EngineConfig) {
	switch {
	case that.Mode != EngineVsEngine:
		that.Engine = cfg
	case side == SideBlack:
		that.Black = cfg
	default:
		that.White = cfg
	}
}

func (that *Lineup) IsHuman(side Side) bool {
	return that.Mode == HumanVsEngine && side == that.Human
}

func (that *Lineup) Validate() error {
	if _, err := ParseMode(string(that.Mode)); err != nil {
		return err
	}

	if that.Mode == EngineVsEngine {
		if err := that.Black.Validate(); err != nil {
			return fmt.Errorf("black: %w", err)
		}
		if err := that.White.Validate(); err != nil {
			return fmt.Errorf("white: %w", err)
		}
		return nil
	}

	if _, err := ParseSide(string(that.Human)); err != nil {
		return err
	}

	return that.Engine.Validate()
}

// Session is one game as tracked by the controller.
type Session struct {
	ID             string    `json:"id"`
	Position       Position  `json:"state"`
	WinningSegment []Coord   `json:"winning_segment,omitempty"`
	Mode           Mode      `json:"mode"`
	Human          Side      `json:"human,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (that *Session) IsTerminal() bool {
	return that.Position.Terminal
}

func (that *Session) Plies() int {
	return that.Position.Board.Stones()
}

// WinnerText is "B", "W", or "-" for a draw.
func (that *Session) WinnerText() string {
	if that.Position.Winner == nil {
		return "-"
	}
	return string(*that.Position.Winner)
}

// Result is one finished game as kept in the results ledger.
type Result struct {
	GameID     string    `json:"game_id"`
	Mode       Mode      `json:"mode"`
	Human      Side      `json:"human,omitempty"`
	Winner     string    `json:"winner"`
	Plies      int       `json:"plies"`
	FinishedAt time.Time `json:"finished_at"`
}

func (that *Session) Result() Result {
	result := Result{
		GameID:     that.ID,
		Mode:       that.Mode,
		Winner:     that.WinnerText(),
		Plies:      that.Plies(),
		FinishedAt: that.UpdatedAt,
	}

	if that.Mode == HumanVsEngine {
		result.Human = that.Human
	}

	return result
}
