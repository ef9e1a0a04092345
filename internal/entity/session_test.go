package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineup_ConfigFor(t *testing.T) {
	minimax := EngineConfig{Kind: EngineMinimax, Depth: 3}
	mcts := EngineConfig{Kind: EngineMCTS, Simulations: 1000}

	t.Run("Human-vs-engine binds the single config to the other side", func(t *testing.T) {
		// Given: human plays black
		lineup := Lineup{Mode: HumanVsEngine, Human: SideBlack, Engine: minimax, Black: mcts, White: mcts}

		// When: resolving both sides
		_, blackIsEngine := lineup.ConfigFor(SideBlack)
		cfg, whiteIsEngine := lineup.ConfigFor(SideWhite)

		// Then: only white is engine-controlled, with the single engine config
		assert.False(t, blackIsEngine)
		require.True(t, whiteIsEngine)
		assert.Equal(t, minimax, cfg)
		assert.True(t, lineup.IsHuman(SideBlack))
	})

	t.Run("Engine-vs-engine ignores the human preference", func(t *testing.T) {
		lineup := Lineup{Mode: EngineVsEngine, Human: SideBlack, Black: minimax, White: mcts}

		black, ok := lineup.ConfigFor(SideBlack)
		require.True(t, ok)
		white, ok := lineup.ConfigFor(SideWhite)
		require.True(t, ok)

		assert.Equal(t, minimax, black)
		assert.Equal(t, mcts, white)
		assert.False(t, lineup.IsHuman(SideBlack))
	})

	t.Run("SetConfig updates the bound side", func(t *testing.T) {
		lineup := Lineup{Mode: EngineVsEngine, Black: minimax, White: minimax}

		lineup.SetConfig(SideWhite, mcts)

		assert.Equal(t, minimax, lineup.Black)
		assert.Equal(t, mcts, lineup.White)
	})

	t.Run("Validate checks the configs in use", func(t *testing.T) {
		valid := Lineup{Mode: HumanVsEngine, Human: SideWhite, Engine: minimax}
		require.NoError(t, valid.Validate())

		broken := Lineup{Mode: EngineVsEngine, Black: minimax, White: EngineConfig{Kind: "random"}}
		require.Error(t, broken.Validate())

		noHuman := Lineup{Mode: HumanVsEngine, Engine: minimax}
		require.Error(t, noHuman.Validate())
	})
}

func TestSession_WinnerText(t *testing.T) {
	white := SideWhite

	assert.Equal(t, "W", (&Session{Position: Position{Terminal: true, Winner: &white}}).WinnerText())
	assert.Equal(t, "-", (&Session{Position: Position{Terminal: true}}).WinnerText())
}
