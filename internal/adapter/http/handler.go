package httpadapter

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"bossbounty/internal/app/action"
	"bossbounty/internal/app/auth"
	"bossbounty/internal/app/ports"
	"bossbounty/internal/app/replay"
	"bossbounty/internal/app/status"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const operatorKeyHeader = "X-Operator-Key"

var (
	ErrMissingOperatorKey     = errors.New("missing x-operator-key header")
	ErrLeaderboardUnavailable = errors.New("leaderboard has no data source")
)

type ActionRunner interface {
	Smash(ctx context.Context) (action.Response, error)
	Claim(ctx context.Context) (action.Response, error)
}

type Handler struct {
	AuthUC      auth.VerifyUseCase
	StatusUC    status.UseCase
	ActionUC    ActionRunner
	ReplayUC    replay.UseCase
	KPI         kpiSnapshotProvider
	AllowOrigin string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware(h.AllowOrigin))

	api := s.Group("/api")
	api.GET("/hud", h.hud)
	api.POST("/smash", h.smash)
	api.POST("/claim", h.claim)
	api.GET("/history", h.history)
	api.GET("/leaderboard", h.leaderboard)

	s.GET("/ops/kpi", h.kpi)
}

type actionResponse struct {
	status.Response
	Action action.Response `json:"action"`
}

func (h Handler) hud(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c, status.Request{})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) smash(c context.Context, ctx *app.RequestContext) {
	h.runAction(c, ctx, h.ActionUC.Smash)
}

func (h Handler) claim(c context.Context, ctx *app.RequestContext) {
	h.runAction(c, ctx, h.ActionUC.Claim)
}

func (h Handler) runAction(c context.Context, ctx *app.RequestContext, run func(context.Context) (action.Response, error)) {
	if err := h.requireOperator(c, ctx); err != nil {
		writeError(ctx, err)
		return
	}
	result, err := run(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	hud, err := h.StatusUC.Execute(c, status.Request{})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, actionResponse{Response: hud, Action: result})
}

func (h Handler) history(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) leaderboard(_ context.Context, ctx *app.RequestContext) {
	writeError(ctx, ErrLeaderboardUnavailable)
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

func (h Handler) requireOperator(c context.Context, ctx *app.RequestContext) error {
	if !h.AuthUC.Enabled() {
		return nil
	}
	key := strings.TrimSpace(string(ctx.GetHeader(operatorKeyHeader)))
	if key == "" {
		return ErrMissingOperatorKey
	}
	return h.AuthUC.Execute(c, auth.VerifyRequest{OperatorKey: key})
}

func writeError(ctx *app.RequestContext, err error) {
	var perr *ports.ProgramError
	switch {
	case errors.Is(err, ErrMissingOperatorKey):
		writeErrorBody(ctx, consts.StatusUnauthorized, "missing_operator_key", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_operator_key", err.Error())
	case errors.Is(err, action.ErrActionInProgress):
		writeErrorBody(ctx, consts.StatusConflict, "action_in_progress", err.Error())
	case errors.Is(err, action.ErrBossDefeated):
		writeErrorBody(ctx, consts.StatusConflict, "boss_defeated", err.Error())
	case errors.Is(err, ports.ErrRoundStillActive):
		writeErrorBody(ctx, consts.StatusConflict, "round_still_active", err.Error())
	case errors.Is(err, action.ErrStateUnknown):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "state_unknown", err.Error())
	case errors.Is(err, ports.ErrSignerUnavailable):
		writeErrorBody(ctx, consts.StatusUnauthorized, "signer_unavailable", err.Error())
	case errors.Is(err, ports.ErrTransactionExpired):
		writeErrorBody(ctx, consts.StatusGatewayTimeout, "transaction_expired", err.Error())
	case errors.As(err, &perr):
		writeErrorBody(ctx, consts.StatusBadGateway, "remote_rejected", perr.Reason())
	case errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ErrLeaderboardUnavailable):
		writeErrorBody(ctx, consts.StatusNotImplemented, "leaderboard_unavailable", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	default:
		hlog.Errorf("unhandled request error: %v", err)
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
