package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/pentago-client/internal/apperror"
	"github.com/rocketscienceinc/pentago-client/internal/entity"
	"github.com/rocketscienceinc/pentago-client/testing/suite"
)

func finishedSession(id string) *entity.Session {
	winner := entity.SideWhite

	session := &entity.Session{
		ID: id,
		Position: entity.Position{
			ToMove:   entity.SideBlack,
			Terminal: true,
			Winner:   &winner,
		},
		WinningSegment: []entity.Coord{{Row: 5, Col: 0}, {Row: 5, Col: 1}, {Row: 5, Col: 2}, {Row: 5, Col: 3}, {Row: 5, Col: 4}},
		Mode:           entity.HumanVsEngine,
		Human:          entity.SideBlack,
		UpdatedAt:      time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	for c := 0; c < 5; c++ {
		session.Position.Board[5][c] = entity.White
	}
	session.Position.Board[0][0] = entity.Black

	return session
}

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage)

	// Given: a finished session
	session := finishedSession("g1")

	// When: CreateOrUpdate is called
	err := sessionRepo.CreateOrUpdate(ctx, session)

	// Then: no error should be returned, and the session is stored under its key
	require.NoError(t, err)

	exists, err := st.Storage.Exists(ctx, "session:g1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage)

		// Given: a stored session
		session := finishedSession("g1")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: GetByID is called with its ID
		retrieved, err := sessionRepo.GetByID(ctx, "g1")

		// Then: the board, outcome and segment survive the round trip
		require.NoError(t, err)
		assert.Equal(t, session.Position.Board, retrieved.Position.Board)
		require.NotNil(t, retrieved.Position.Winner)
		assert.Equal(t, entity.SideWhite, *retrieved.Position.Winner)
		assert.Equal(t, session.WinningSegment, retrieved.WinningSegment)
		assert.True(t, session.UpdatedAt.Equal(retrieved.UpdatedAt))
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage)

		// When: GetByID is called with a non-existent ID
		_, err := sessionRepo.GetByID(ctx, "missing")

		// Then: ErrSessionNotFound is returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage)

	// Given: a stored session
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, finishedSession("g1")))

	// When: it is deleted
	err := sessionRepo.DeleteByID(ctx, "g1")

	// Then: it can no longer be found
	require.NoError(t, err)
	_, err = sessionRepo.GetByID(ctx, "g1")
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)
}
