package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/pentago-client/internal/apperror"
	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 200
)

type newGameRequest struct {
	Lineup *entity.Lineup `json:"lineup"`
}

type cellRequest struct {
	Cell string `json:"cell"`
}

type quadrantRequest struct {
	Quadrant string `json:"quadrant"`
}

type rotateRequest struct {
	Direction string `json:"direction"`
}

// actionResponse - Accepted is false when the controller ignored the input in its current state;
// Reason then says why.
type actionResponse struct {
	Accepted bool               `json:"accepted"`
	Reason   string             `json:"reason,omitempty"`
	Session  entity.SessionView `json:"session"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionHandler struct {
	logger     *slog.Logger
	controller sessionController
	sessions   sessionReader
	results    resultLister
}

func newSessionHandler(logger *slog.Logger, controller sessionController, sessions sessionReader, results resultLister) *sessionHandler {
	return &sessionHandler{
		logger:     logger,
		controller: controller,
		sessions:   sessions,
		results:    results,
	}
}

func (that *sessionHandler) Snapshot(ctx echo.Context) error {
	view, err := that.controller.Snapshot(ctx.Request().Context())
	if err != nil {
		return that.fail(ctx, "Snapshot", err)
	}

	return ctx.JSON(http.StatusOK, view)
}

// NewGame - starts a game with the lineup from the body, or with the current lineup when the body has none.
func (that *sessionHandler) NewGame(ctx echo.Context) error {
	var req newGameRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	reqCtx := ctx.Request().Context()

	var lineup entity.Lineup
	if req.Lineup != nil {
		lineup = *req.Lineup
	} else {
		view, err := that.controller.Snapshot(reqCtx)
		if err != nil {
			return that.fail(ctx, "NewGame", err)
		}
		lineup = view.Lineup
	}

	accepted, err := that.controller.NewGame(reqCtx, lineup)
	if err != nil {
		return that.fail(ctx, "NewGame", err)
	}

	return that.respond(ctx, accepted)
}

func (that *sessionHandler) SetEngineConfig(ctx echo.Context) error {
	side, err := entity.ParseSide(ctx.Param("side"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	var cfg entity.EngineConfig
	if err = ctx.Bind(&cfg); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if err = that.controller.SetEngineConfig(ctx.Request().Context(), side, cfg); err != nil {
		return that.fail(ctx, "SetEngineConfig", err)
	}

	return that.respond(ctx, true)
}

func (that *sessionHandler) ResumeEngine(ctx echo.Context) error {
	accepted, err := that.controller.ResumeEngine(ctx.Request().Context())
	if err != nil {
		return that.fail(ctx, "ResumeEngine", err)
	}

	return that.respond(ctx, accepted)
}

func (that *sessionHandler) SelectCell(ctx echo.Context) error {
	var req cellRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	cell, err := entity.ParseCoord(req.Cell)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	accepted, err := that.controller.SelectCell(ctx.Request().Context(), cell)
	if err != nil {
		return that.fail(ctx, "SelectCell", err)
	}

	return that.respond(ctx, accepted)
}

func (that *sessionHandler) SelectQuadrant(ctx echo.Context) error {
	var req quadrantRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	quadrant, err := entity.ParseQuadrant(req.Quadrant)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	accepted, err := that.controller.SelectQuadrant(ctx.Request().Context(), quadrant)
	if err != nil {
		return that.fail(ctx, "SelectQuadrant", err)
	}

	return that.respond(ctx, accepted)
}

func (that *sessionHandler) Rotate(ctx echo.Context) error {
	var req rotateRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	direction, err := entity.ParseDirection(req.Direction)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	accepted, err := that.controller.Rotate(ctx.Request().Context(), direction)
	if err != nil {
		return that.fail(ctx, "Rotate", err)
	}

	return that.respond(ctx, accepted)
}

// GetSession - returns the last stored state of any game played, finished or not.
func (that *sessionHandler) GetSession(ctx echo.Context) error {
	session, err := that.sessions.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return that.fail(ctx, "GetSession", err)
	}

	return ctx.JSON(http.StatusOK, session)
}

func (that *sessionHandler) ListResults(ctx echo.Context) error {
	limit := defaultResultsLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
		}
		limit = min(n, maxResultsLimit)
	}

	results, err := that.results.List(ctx.Request().Context(), limit)
	if err != nil {
		return that.fail(ctx, "ListResults", err)
	}

	if results == nil {
		results = []entity.Result{}
	}

	return ctx.JSON(http.StatusOK, results)
}

func (that *sessionHandler) respond(ctx echo.Context, accepted bool) error {
	view, err := that.controller.Snapshot(ctx.Request().Context())
	if err != nil {
		return that.fail(ctx, "respond", err)
	}

	resp := actionResponse{Accepted: accepted, Session: view}
	if !accepted {
		resp.Reason = view.Refusal
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (that *sessionHandler) fail(ctx echo.Context, method string, err error) error {
	log := that.logger.With("method", method)

	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return ctx.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrUnknownEngine), errors.Is(err, apperror.ErrInvalidNotation),
		errors.Is(err, entity.ErrInvalidEngineConfig):
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrStopped):
		return ctx.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		log.Error("request failed", "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}
