package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/pentago-client/internal/apperror"
	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

type mockController struct {
	mock.Mock
}

func (that *mockController) NewGame(ctx context.Context, lineup entity.Lineup) (bool, error) {
	args := that.Called(ctx, lineup)
	return args.Bool(0), args.Error(1)
}

func (that *mockController) SelectCell(ctx context.Context, cell entity.Coord) (bool, error) {
	args := that.Called(ctx, cell)
	return args.Bool(0), args.Error(1)
}

func (that *mockController) SelectQuadrant(ctx context.Context, quadrant entity.Quadrant) (bool, error) {
	args := that.Called(ctx, quadrant)
	return args.Bool(0), args.Error(1)
}

func (that *mockController) Rotate(ctx context.Context, direction entity.Direction) (bool, error) {
	args := that.Called(ctx, direction)
	return args.Bool(0), args.Error(1)
}

func (that *mockController) SetEngineConfig(ctx context.Context, side entity.Side, cfg entity.EngineConfig) error {
	args := that.Called(ctx, side, cfg)
	return args.Error(0)
}

func (that *mockController) ResumeEngine(ctx context.Context) (bool, error) {
	args := that.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (that *mockController) Snapshot(ctx context.Context) (entity.SessionView, error) {
	args := that.Called(ctx)
	return args.Get(0).(entity.SessionView), args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (that *mockSessions) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

type mockResults struct {
	mock.Mock
}

func (that *mockResults) List(ctx context.Context, limit int) ([]entity.Result, error) {
	args := that.Called(ctx, limit)
	results, _ := args.Get(0).([]entity.Result)
	return results, args.Error(1)
}

var humanBlack = entity.Lineup{
	Mode:   entity.HumanVsEngine,
	Human:  entity.SideBlack,
	Engine: entity.EngineConfig{Kind: entity.EngineMinimax, Depth: 3},
}

func newTestServer() (*Server, *mockController, *mockSessions, *mockResults) {
	controller := &mockController{}
	sessions := &mockSessions{}
	results := &mockResults{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(logger, controller, sessions, results), controller, sessions, results
}

func serve(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	return rec
}

func decodeAction(t *testing.T, rec *httptest.ResponseRecorder) actionResponse {
	t.Helper()

	var resp actionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func TestServer_Ping(t *testing.T) {
	srv, _, _, _ := newTestServer()

	rec := serve(srv, http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Snapshot(t *testing.T) {
	t.Run("returns the session view", func(t *testing.T) {
		// Given
		srv, controller, _, _ := newTestServer()
		view := entity.SessionView{Lineup: humanBlack, Busy: true, Progress: entity.IdleProgress()}
		controller.On("Snapshot", mock.Anything).Return(view, nil)

		// When
		rec := serve(srv, http.MethodGet, "/session", "")

		// Then
		require.Equal(t, http.StatusOK, rec.Code)

		var got entity.SessionView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Busy)
		assert.Equal(t, humanBlack, got.Lineup)
	})

	t.Run("stopped controller is unavailable", func(t *testing.T) {
		srv, controller, _, _ := newTestServer()
		controller.On("Snapshot", mock.Anything).Return(entity.SessionView{}, apperror.ErrStopped)

		rec := serve(srv, http.MethodGet, "/session", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestServer_NewGame(t *testing.T) {
	t.Run("lineup from the body", func(t *testing.T) {
		// Given
		srv, controller, _, _ := newTestServer()
		lineup := entity.Lineup{
			Mode:  entity.EngineVsEngine,
			Black: entity.EngineConfig{Kind: entity.EngineMinimax, Depth: 2},
			White: entity.EngineConfig{Kind: entity.EngineMCTS, Simulations: 1000},
		}
		controller.On("NewGame", mock.Anything, lineup).Return(true, nil).Once()
		controller.On("Snapshot", mock.Anything).Return(entity.SessionView{Lineup: lineup}, nil)

		body := `{"lineup":{"mode":"engine-vs-engine","black":{"kind":"minimax","depth":2},"white":{"kind":"mcts","simulations":1000}}}`

		// When
		rec := serve(srv, http.MethodPost, "/session", body)

		// Then
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeAction(t, rec).Accepted)
		controller.AssertExpectations(t)
	})

	t.Run("empty body replays the current lineup", func(t *testing.T) {
		srv, controller, _, _ := newTestServer()
		controller.On("Snapshot", mock.Anything).Return(entity.SessionView{Lineup: humanBlack}, nil)
		controller.On("NewGame", mock.Anything, humanBlack).Return(false, nil).Once()

		rec := serve(srv, http.MethodPost, "/session", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decodeAction(t, rec).Accepted)
		controller.AssertExpectations(t)
	})

	t.Run("invalid lineup is a bad request", func(t *testing.T) {
		srv, controller, _, _ := newTestServer()
		controller.On("NewGame", mock.Anything, mock.Anything).
			Return(false, fmt.Errorf("failed to validate lineup: %w", apperror.ErrUnknownEngine))

		rec := serve(srv, http.MethodPost, "/session", `{"lineup":{"mode":"human-vs-engine","human":"B","engine":{"kind":"alphazero"}}}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_HumanMove(t *testing.T) {
	t.Run("cell, quadrant and direction are parsed from notation", func(t *testing.T) {
		// Given
		srv, controller, _, _ := newTestServer()
		controller.On("Snapshot", mock.Anything).Return(entity.SessionView{}, nil)
		controller.On("SelectCell", mock.Anything, entity.Coord{Row: 2, Col: 2}).Return(true, nil).Once()
		controller.On("SelectQuadrant", mock.Anything, entity.BottomRight).Return(true, nil).Once()
		controller.On("Rotate", mock.Anything, entity.CounterClockwise).Return(true, nil).Once()

		// When
		cellRec := serve(srv, http.MethodPost, "/session/cell", `{"cell":"C3"}`)
		quadrantRec := serve(srv, http.MethodPost, "/session/quadrant", `{"quadrant":"Q11"}`)
		rotateRec := serve(srv, http.MethodPost, "/session/rotate", `{"direction":"ccw"}`)

		// Then
		for _, rec := range []*httptest.ResponseRecorder{cellRec, quadrantRec, rotateRec} {
			require.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, decodeAction(t, rec).Accepted)
		}
		controller.AssertExpectations(t)
	})

	t.Run("ignored input is reported as not accepted with its reason", func(t *testing.T) {
		// Given: a controller that is waiting on the engine
		srv, controller, _, _ := newTestServer()
		view := entity.SessionView{Busy: true, Refusal: apperror.ErrBusy.Error()}
		controller.On("Snapshot", mock.Anything).Return(view, nil)
		controller.On("SelectCell", mock.Anything, mock.Anything).Return(false, nil)

		// When
		rec := serve(srv, http.MethodPost, "/session/cell", `{"cell":"A1"}`)

		// Then
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeAction(t, rec)
		assert.False(t, resp.Accepted)
		assert.Equal(t, apperror.ErrBusy.Error(), resp.Reason)
		assert.True(t, resp.Session.Busy)
	})

	t.Run("accepted input carries no reason", func(t *testing.T) {
		srv, controller, _, _ := newTestServer()
		controller.On("Snapshot", mock.Anything).Return(entity.SessionView{Refusal: "stale"}, nil)
		controller.On("SelectCell", mock.Anything, mock.Anything).Return(true, nil)

		rec := serve(srv, http.MethodPost, "/session/cell", `{"cell":"A1"}`)

		resp := decodeAction(t, rec)
		assert.True(t, resp.Accepted)
		assert.Empty(t, resp.Reason)
	})

	t.Run("malformed notation never reaches the controller", func(t *testing.T) {
		srv, controller, _, _ := newTestServer()

		cases := map[string]string{
			"/session/cell":     `{"cell":"G7"}`,
			"/session/quadrant": `{"quadrant":"Q22"}`,
			"/session/rotate":   `{"direction":"left"}`,
		}

		for target, body := range cases {
			rec := serve(srv, http.MethodPost, target, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		}
		controller.AssertNotCalled(t, "SelectCell", mock.Anything, mock.Anything)
		controller.AssertNotCalled(t, "SelectQuadrant", mock.Anything, mock.Anything)
		controller.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything)
	})
}

func TestServer_Engines(t *testing.T) {
	t.Run("set engine config for a side", func(t *testing.T) {
		// Given
		srv, controller, _, _ := newTestServer()
		cfg := entity.EngineConfig{Kind: entity.EngineMCTS, TimeMs: 1500}
		controller.On("SetEngineConfig", mock.Anything, entity.SideWhite, cfg).Return(nil).Once()
		controller.On("Snapshot", mock.Anything).Return(entity.SessionView{}, nil)

		// When
		rec := serve(srv, http.MethodPut, "/session/engines/W", `{"kind":"mcts","time_ms":1500}`)

		// Then
		require.Equal(t, http.StatusOK, rec.Code)
		controller.AssertExpectations(t)
	})

	t.Run("unknown side", func(t *testing.T) {
		srv, _, _, _ := newTestServer()

		rec := serve(srv, http.MethodPut, "/session/engines/red", `{"kind":"mcts"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("resume", func(t *testing.T) {
		srv, controller, _, _ := newTestServer()
		controller.On("ResumeEngine", mock.Anything).Return(true, nil).Once()
		controller.On("Snapshot", mock.Anything).Return(entity.SessionView{Busy: true}, nil)

		rec := serve(srv, http.MethodPost, "/session/resume", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeAction(t, rec).Accepted)
	})
}

func TestServer_History(t *testing.T) {
	t.Run("stored session", func(t *testing.T) {
		srv, _, sessions, _ := newTestServer()
		sessions.On("GetByID", mock.Anything, "g1").Return(&entity.Session{ID: "g1", Mode: entity.HumanVsEngine}, nil)

		rec := serve(srv, http.MethodGet, "/sessions/g1", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got entity.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "g1", got.ID)
	})

	t.Run("missing session", func(t *testing.T) {
		srv, _, sessions, _ := newTestServer()
		sessions.On("GetByID", mock.Anything, "nope").Return(nil, apperror.ErrSessionNotFound)

		rec := serve(srv, http.MethodGet, "/sessions/nope", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("results use the default limit", func(t *testing.T) {
		srv, _, _, results := newTestServer()
		results.On("List", mock.Anything, defaultResultsLimit).Return(nil, nil).Once()

		rec := serve(srv, http.MethodGet, "/results", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
		results.AssertExpectations(t)
	})

	t.Run("results limit is capped", func(t *testing.T) {
		srv, _, _, results := newTestServer()
		results.On("List", mock.Anything, maxResultsLimit).
			Return([]entity.Result{{GameID: "g1", Winner: "B", Plies: 9}}, nil).Once()

		rec := serve(srv, http.MethodGet, "/results?limit=5000", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got []entity.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "g1", got[0].GameID)
	})

	t.Run("bad limit", func(t *testing.T) {
		srv, _, _, _ := newTestServer()

		rec := serve(srv, http.MethodGet, "/results?limit=-1", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
