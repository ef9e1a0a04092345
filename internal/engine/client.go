package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

const requestIDHeader = "X-Request-ID"

var ErrUnexpectedStatus = errors.New("unexpected engine status")

// Client talks to the move-computation service over its JSON API.
type Client struct {
	logger  *slog.Logger
	baseURL string
	http    *http.Client
}

// NewClient - the http client carries no timeout: engine searches are bounded by their own time budget.
func NewClient(logger *slog.Logger, baseURL string) *Client {
	return &Client{
		logger:  logger.With("component", "engine"),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

func (that *Client) CreateGame(ctx context.Context) (string, entity.Position, error) {
	var resp newGameResponse
	if err := that.do(ctx, http.MethodPost, "/new", nil, &resp); err != nil {
		return "", entity.Position{}, fmt.Errorf("failed to create game: %w", err)
	}

	pos, err := resp.State.toPosition()
	if err != nil {
		return "", entity.Position{}, err
	}

	return resp.GameID, pos, nil
}

func (that *Client) State(ctx context.Context, gameID string) (entity.Position, error) {
	var resp stateResponse
	if err := that.do(ctx, http.MethodGet, "/state/"+url.PathEscape(gameID), nil, &resp); err != nil {
		return entity.Position{}, fmt.Errorf("failed to get state: %w", err)
	}

	return resp.State.toPosition()
}

func (that *Client) SubmitMove(ctx context.Context, gameID string, move entity.Move) (entity.Position, error) {
	body := playRequest{
		Cell:      move.Cell.String(),
		Quadrant:  move.Quadrant.String(),
		Direction: move.Direction.String(),
	}

	var resp stateResponse
	if err := that.do(ctx, http.MethodPost, "/play/"+url.PathEscape(gameID), body, &resp); err != nil {
		return entity.Position{}, fmt.Errorf("failed to submit move: %w", err)
	}

	return resp.State.toPosition()
}

func (that *Client) RequestEngineMove(ctx context.Context, gameID string, req entity.EngineRequest) (entity.EngineReply, error) {
	var resp botResponse
	if err := that.do(ctx, http.MethodPost, "/bot/"+url.PathEscape(gameID), req, &resp); err != nil {
		return entity.EngineReply{}, fmt.Errorf("failed to request engine move: %w", err)
	}

	pos, err := resp.State.toPosition()
	if err != nil {
		return entity.EngineReply{}, err
	}

	return entity.EngineReply{Move: resp.Move, Position: pos}, nil
}

func (that *Client) PollProgress(ctx context.Context, gameID string) (entity.ProgressSnapshot, error) {
	var resp progressResponse
	if err := that.do(ctx, http.MethodGet, "/progress/"+url.PathEscape(gameID), nil, &resp); err != nil {
		return entity.ProgressSnapshot{}, fmt.Errorf("failed to poll progress: %w", err)
	}

	return resp.toSnapshot(), nil
}

func (that *Client) do(ctx context.Context, method, path string, in, out any) error {
	requestID := uuid.NewString()
	log := that.logger.With("method", method, "path", path, "requestID", requestID)

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, that.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()

	resp, err := that.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("engine responded", "status", resp.StatusCode, "took", time.Since(started))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
