package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

type newGamePayload struct {
	Lineup *entity.Lineup `json:"lineup,omitempty"`
}

type cellPayload struct {
	Cell string `json:"cell"`
}

type quadrantPayload struct {
	Quadrant string `json:"quadrant"`
}

type rotatePayload struct {
	Direction string `json:"direction"`
}

type enginePayload struct {
	Side   string              `json:"side"`
	Config entity.EngineConfig `json:"config"`
}

type ackPayload struct {
	Action   string `json:"action"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

type errorPayload struct {
	Action string `json:"action,omitempty"`
	Error  string `json:"error"`
}

// handleConnect - sends the current session to the new client only.
func (that *Server) handleConnect(ctx context.Context, c *client, _ json.RawMessage) error {
	view, err := that.controller.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}

	that.send(c, messageSession, view)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, c *client, payload json.RawMessage) error {
	var req newGamePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	var lineup entity.Lineup
	if req.Lineup != nil {
		lineup = *req.Lineup
	} else {
		view, err := that.controller.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to get snapshot: %w", err)
		}
		lineup = view.Lineup
	}

	accepted, err := that.controller.NewGame(ctx, lineup)
	if err != nil {
		return fmt.Errorf("failed to start new game: %w", err)
	}

	return that.ack(ctx, c, "game:new", accepted)
}

func (that *Server) handleSelectCell(ctx context.Context, c *client, payload json.RawMessage) error {
	var req cellPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	cell, err := entity.ParseCoord(req.Cell)
	if err != nil {
		return err
	}

	accepted, err := that.controller.SelectCell(ctx, cell)
	if err != nil {
		return fmt.Errorf("failed to select cell: %w", err)
	}

	return that.ack(ctx, c, "cell:select", accepted)
}

func (that *Server) handleSelectQuadrant(ctx context.Context, c *client, payload json.RawMessage) error {
	var req quadrantPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	quadrant, err := entity.ParseQuadrant(req.Quadrant)
	if err != nil {
		return err
	}

	accepted, err := that.controller.SelectQuadrant(ctx, quadrant)
	if err != nil {
		return fmt.Errorf("failed to select quadrant: %w", err)
	}

	return that.ack(ctx, c, "quadrant:select", accepted)
}

func (that *Server) handleRotate(ctx context.Context, c *client, payload json.RawMessage) error {
	var req rotatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	direction, err := entity.ParseDirection(req.Direction)
	if err != nil {
		return err
	}

	accepted, err := that.controller.Rotate(ctx, direction)
	if err != nil {
		return fmt.Errorf("failed to rotate: %w", err)
	}

	return that.ack(ctx, c, "rotate", accepted)
}

func (that *Server) handleSetEngine(ctx context.Context, c *client, payload json.RawMessage) error {
	var req enginePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	side, err := entity.ParseSide(req.Side)
	if err != nil {
		return err
	}

	if err = that.controller.SetEngineConfig(ctx, side, req.Config); err != nil {
		return fmt.Errorf("failed to set engine config: %w", err)
	}

	return that.ack(ctx, c, "engine:set", true)
}

func (that *Server) handleResume(ctx context.Context, c *client, _ json.RawMessage) error {
	accepted, err := that.controller.ResumeEngine(ctx)
	if err != nil {
		return fmt.Errorf("failed to resume engine: %w", err)
	}

	return that.ack(ctx, c, "resume", accepted)
}

// ack answers an action. An ignored action carries the reason the session gave for it.
func (that *Server) ack(ctx context.Context, c *client, action string, accepted bool) error {
	payload := ackPayload{Action: action, Accepted: accepted}

	if !accepted {
		view, err := that.controller.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to get snapshot: %w", err)
		}
		payload.Reason = view.Refusal
	}

	that.send(c, messageAck, payload)

	return nil
}

func (that *Server) sendError(c *client, action, message string) {
	that.send(c, messageError, errorPayload{Action: action, Error: message})
}

func (that *Server) send(c *client, kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		that.logger.Error("failed to marshal payload", "type", kind, "error", err)
		return
	}

	that.hub.reply(c, Message{Type: kind, Payload: data})
}
