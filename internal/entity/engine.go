package entity

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rocketscienceinc/pentago-client/internal/apperror"
)

type EngineKind string

const (
	EngineMinimax EngineKind = "minimax"
	EngineMCTS    EngineKind = "mcts"
	EnginePolicy  EngineKind = "policy" // reserved, forwarded as is
)

// simsPerDepth - the advisory depth sent with MCTS requests is one level per this many simulations.
const simsPerDepth = 500

var ErrInvalidEngineConfig = errors.New("invalid engine config")

func ParseEngineKind(s string) (EngineKind, error) {
	switch kind := EngineKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case EngineMinimax, EngineMCTS, EnginePolicy:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownEngine, s)
	}
}

// EngineConfig holds the search parameters of one engine-controlled side.
type EngineConfig struct {
	Kind        EngineKind `json:"kind"`
	Depth       int        `json:"depth,omitempty"`
	TimeMs      int        `json:"time_ms,omitempty"`
	Simulations int        `json:"simulations,omitempty"`
}

func (that EngineConfig) Validate() error {
	if _, err := ParseEngineKind(string(that.Kind)); err != nil {
		return err
	}

	if that.TimeMs < 0 || that.Simulations < 0 || that.Depth < 0 {
		return fmt.Errorf("%w: negative parameter", ErrInvalidEngineConfig)
	}

	if that.Kind == EngineMinimax && that.Depth < 1 {
		return fmt.Errorf("%w: minimax depth must be at least 1", ErrInvalidEngineConfig)
	}

	if that.Kind == EngineMCTS && that.Simulations == 0 && that.TimeMs == 0 {
		return fmt.Errorf("%w: mcts needs simulations or time_ms", ErrInvalidEngineConfig)
	}

	return nil
}

// LongRunning reports whether requests made with this config should be tracked by the progress monitor.
func (that EngineConfig) LongRunning() bool {
	switch that.Kind {
	case EngineMCTS:
		return true
	case EngineMinimax:
		return that.TimeMs > 0
	default:
		return false
	}
}

// Label is a short human-readable description shown next to the progress bar.
func (that EngineConfig) Label() string {
	switch that.Kind {
	case EngineMCTS:
		if that.Simulations > 0 {
			return fmt.Sprintf("MCTS %d sims", that.Simulations)
		}
		return fmt.Sprintf("MCTS %dms", that.TimeMs)
	case EngineMinimax:
		if that.TimeMs > 0 {
			return fmt.Sprintf("Minimax depth %d, %dms", that.Depth, that.TimeMs)
		}
		return fmt.Sprintf("Minimax depth %d", that.Depth)
	default:
		return string(that.Kind)
	}
}

// EngineRequest is the body of a move request as the engine expects it.
type EngineRequest struct {
	Depth       int        `json:"depth"`
	TimeMs      *int       `json:"time_ms,omitempty"`
	Engine      EngineKind `json:"engine"`
	Simulations *int       `json:"simulations,omitempty"`
}

// Request translates the config into engine parameters. For MCTS the depth is only an estimate
// derived from the simulation count; the simulation count itself is sent unchanged.
func (that EngineConfig) Request() EngineRequest {
	req := EngineRequest{
		Depth:  that.Depth,
		Engine: that.Kind,
	}

	if that.TimeMs > 0 {
		timeMs := that.TimeMs
		req.TimeMs = &timeMs
	}

	if that.Kind == EngineMCTS {
		req.Depth = DepthFromSimulations(that.Simulations)
		if that.Simulations > 0 {
			sims := that.Simulations
			req.Simulations = &sims
		}
	}

	return req
}

func DepthFromSimulations(simulations int) int {
	return max(1, int(math.Round(float64(simulations)/simsPerDepth)))
}

// EngineReply is the engine's answer to a move request.
type EngineReply struct {
	Move     string   `json:"move"`
	Position Position `json:"state"`
}
