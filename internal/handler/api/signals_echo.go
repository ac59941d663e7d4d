package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"SignalDesk/internal/catalog"
	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/usecase"
	xhttp "SignalDesk/pkg/http"
	xlogger "SignalDesk/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalsEchoHandler exposes the analyzer over a JSON API.
type SignalsEchoHandler struct {
	logger    *xlogger.Logger
	assets    *catalog.Catalog
	orch      *usecase.AnalysisOrchestrator
	lifecycle *usecase.SignalLifecycle
	history   *usecase.SignalHistory
	limiter   *ratelimit.Limiter
	clock     usecase.Clock
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	assets *catalog.Catalog,
	orch *usecase.AnalysisOrchestrator,
	lifecycle *usecase.SignalLifecycle,
	history *usecase.SignalHistory,
	limiter *ratelimit.Limiter,
	clock usecase.Clock,
) *SignalsEchoHandler {
	return &SignalsEchoHandler{
		logger:    logger,
		assets:    assets,
		orch:      orch,
		lifecycle: lifecycle,
		history:   history,
		limiter:   limiter,
		clock:     clock,
	}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/categories", h.Categories)
	g.GET("/assets", h.Assets)
	g.POST("/analyze", h.Analyze)

	s := g.Group("/signals")
	s.GET("/current", h.Current)
	s.GET("/history", h.History)
	s.GET("/active", h.Active)
	s.GET("/stats", h.Stats)
	s.GET("/:id", h.Signal)
	s.POST("/:id/settle", h.Settle)
}

func (h *SignalsEchoHandler) Categories(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.assets.Categories())
}

func (h *SignalsEchoHandler) Assets(c echo.Context) error {
	req := &models.AssetsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Category == "" {
		return xhttp.SuccessResponse(c, h.assets.All())
	}
	return xhttp.SuccessResponse(c, h.assets.ListByCategory(req.Category))
}

func (h *SignalsEchoHandler) Analyze(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		h.logger.Warn("analyze rate limited", xlogger.String("remote", c.RealIP()))
		retry := h.limiter.RetryAfter(c.RealIP())
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many analysis requests"))
	}

	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.orch.Analyze(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "analyze", err)
	}
	return xhttp.CreatedResponse(c, sig)
}

func (h *SignalsEchoHandler) Current(c echo.Context) error {
	sig, ok := h.orch.Current()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no signal has been generated yet"))
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *SignalsEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows := h.history.Recent(req.N)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *SignalsEchoHandler) Active(c echo.Context) error {
	rows := h.history.Active()
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *SignalsEchoHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.history.Stats())
}

func (h *SignalsEchoHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sig, ok := h.history.Get(req.ID)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("signal %d not found", req.ID))
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *SignalsEchoHandler) Settle(c echo.Context) error {
	req := &models.SettleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sig, err := h.lifecycle.Settle(c.Request().Context(), req.ID, req.Outcome, h.clock())
	if err != nil {
		return h.fail(c, "settle", err)
	}
	return xhttp.SuccessResponse(c, sig)
}

// fail maps usecase errors onto API errors.
func (h *SignalsEchoHandler) fail(c echo.Context, op string, err error) error {
	var appErr *xhttp.AppError
	switch {
	case errors.Is(err, usecase.ErrInvalidAsset):
		appErr = xhttp.NewAppError("ERR_INVALID_ASSET", "asset_id", "unknown asset", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidTimeframe):
		appErr = xhttp.NewAppError("ERR_INVALID_TIMEFRAME", "timeframe", "timeframe is not allowed", http.StatusBadRequest).
			WithParam("allowed", h.orch.Timeframes().Allowed)
	case errors.Is(err, usecase.ErrAnalysisInProgress):
		appErr = xhttp.ConflictError("an analysis is already in progress")
	case errors.Is(err, usecase.ErrAnalysisFailed):
		appErr = xhttp.ServiceUnavailableError("analysis failed, try again")
	case errors.Is(err, usecase.ErrSignalNotFound):
		appErr = xhttp.NotFoundError("signal not found")
	case errors.Is(err, usecase.ErrStaleSettlement):
		appErr = xhttp.NewAppError("ERR_STALE_SETTLEMENT", "", "signal already expired", http.StatusConflict)
	case errors.Is(err, usecase.ErrIllegalTransition):
		appErr = xhttp.NewAppError("ERR_ILLEGAL_TRANSITION", "", "signal already settled", http.StatusConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// the caller went away; the run itself carries on
		h.logger.Debug(op+" abandoned by client", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ClientClosedError("request cancelled"))
	default:
		h.logger.Error(op+" failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("something went wrong").WithError(err))
	}
	h.logger.Debug(op+" rejected", xlogger.String("code", appErr.Code), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, appErr.WithError(err))
}
