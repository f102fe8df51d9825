package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/stillonearth/gymbridge/internal/app/frames"
	"github.com/stillonearth/gymbridge/internal/app/observe"
	"github.com/stillonearth/gymbridge/internal/app/ports"
	"github.com/stillonearth/gymbridge/internal/app/replay"
	"github.com/stillonearth/gymbridge/internal/app/reset"
	"github.com/stillonearth/gymbridge/internal/app/step"
	"github.com/stillonearth/gymbridge/internal/domain/gym"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	StepUC    step.UseCase
	ResetUC   reset.UseCase
	ObserveUC observe.UseCase
	FramesUC  frames.UseCase
	ReplayUC  replay.UseCase
	KPI       kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	env := s.Group("/api/env")
	env.POST("/step", h.step)
	env.POST("/reset", h.reset)
	env.GET("/state", h.state)
	env.GET("/visual_observations", h.visualObservations)
	env.GET("/replay", h.replay)

	s.GET("/ops/kpi", h.kpi)
}

type stepRequest struct {
	Actions []step.AgentAction `json:"actions"`
}

func (h Handler) step(c context.Context, ctx *app.RequestContext) {
	var body stepRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.StepUC.Execute(c, step.Request{Actions: body.Actions})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp.AgentStates)
}

func (h Handler) reset(c context.Context, ctx *app.RequestContext) {
	resp, err := h.ResetUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"episode_id":   resp.EpisodeID,
		"agent_states": resp.AgentStates,
	})
}

func (h Handler) state(c context.Context, ctx *app.RequestContext) {
	resp, err := h.ObserveUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) visualObservations(c context.Context, ctx *app.RequestContext) {
	b, err := h.FramesUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Data(consts.StatusOK, "image/png", b)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		EpisodeID: string(ctx.Query("episode_id")),
		Limit:     limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, gym.ErrActionCount):
		writeErrorBody(ctx, consts.StatusBadRequest, "action_count_mismatch", err.Error())
	case errors.Is(err, step.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, step.ErrTimeout):
		writeErrorBody(ctx, consts.StatusGatewayTimeout, "step_timeout", err.Error())
	case errors.Is(err, reset.ErrTimeout):
		writeErrorBody(ctx, consts.StatusGatewayTimeout, "reset_timeout", err.Error())
	case errors.Is(err, frames.ErrNoFrames):
		writeErrorBody(ctx, consts.StatusNotFound, "no_visual_observations", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
