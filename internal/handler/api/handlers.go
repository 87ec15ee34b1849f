package api

import (
	"time"

	models "GoldDesk/internal/domain/models"
	domrepo "GoldDesk/internal/domain/repository"
	"GoldDesk/internal/service/metrics"
	"GoldDesk/internal/service/ratelimit"
	"GoldDesk/internal/services/killzone"
	"GoldDesk/internal/usecase"
	xhttp "GoldDesk/pkg/http"
	xlogger "GoldDesk/pkg/logger"
	"GoldDesk/pkg/util"

	"github.com/labstack/echo/v4"
)

// Handler implements the Echo-based HTTP surface over the usecases.
type Handler struct {
	logger   *xlogger.Logger
	signals  *usecase.SignalUsecase
	plans    *usecase.PlanUsecase
	patterns *usecase.PatternsUsecase
	journal  *usecase.JournalUsecase
	builder  *usecase.SnapshotBuilder
	candles  domrepo.CandleStore
	hub      *Hub
	rl       *ratelimit.Limiter
}

func NewHandler(
	logger *xlogger.Logger,
	signals *usecase.SignalUsecase,
	plans *usecase.PlanUsecase,
	patterns *usecase.PatternsUsecase,
	journal *usecase.JournalUsecase,
	builder *usecase.SnapshotBuilder,
	candles domrepo.CandleStore,
	hub *Hub,
) *Handler {
	metrics.Register()
	return &Handler{
		logger:   logger,
		signals:  signals,
		plans:    plans,
		patterns: patterns,
		journal:  journal,
		builder:  builder,
		candles:  candles,
		hub:      hub,
		rl:       ratelimit.New(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	if h.hub != nil {
		e.GET("/ws/signals", h.hub.Serve)
	}

	g := e.Group("/api")
	g.POST("/signal/analyze", h.Analyze)
	g.GET("/killzone/status", h.KillzoneStatus)
	g.GET("/plan", h.Plan)
	g.GET("/patterns/similar", h.Similar)
	g.GET("/patterns/summary", h.PatternsSummary)
	g.POST("/journal/trades", h.UpsertTrade)
	g.GET("/journal/trades", h.ListTrades)
	g.DELETE("/journal/trades/:id", h.DeleteTrade)
	g.POST("/snapshots/rebuild", h.Rebuild)
	g.GET("/snapshots/stats", h.SnapshotStats)
	g.GET("/candles", h.Candles)
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (h *Handler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.candles != nil {
		if err := h.candles.Health(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["clickhouse"] = err.Error()
			return xhttp.DataResponse(c, 503, status)
		}
		status["clickhouse"] = "ok"
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *Handler) Analyze(c echo.Context) error {
	defer observe("analyze", time.Now())

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.signals.Analyze(c.Request().Context(), req)
	if err != nil {
		metrics.APIErrors.WithLabelValues("analyze").Inc()
		h.logger.Error("analyze usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	if sig == nil {
		return xhttp.SuccessResponse(c, map[string]interface{}{"signal": nil})
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"signal": sig})
}

func (h *Handler) KillzoneStatus(c echo.Context) error {
	defer observe("killzone_status", time.Now())

	req := &models.KillzoneStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	at := time.Now()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			return xhttp.BadRequestResponse(c, "at must be RFC3339")
		}
		at = parsed
	}
	return xhttp.SuccessResponse(c, h.signals.Status(at))
}

func (h *Handler) Plan(c echo.Context) error {
	defer observe("plan", time.Now())

	req := &models.PlanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":plan", 5, 2) {
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	res, err := h.plans.Build(c.Request().Context(), req)
	if err != nil {
		metrics.APIErrors.WithLabelValues("plan").Inc()
		h.logger.Error("plan usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) Similar(c echo.Context) error {
	defer observe("similar", time.Now())

	req := &models.SimilarRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.patterns.Similar(c.Request().Context(), req)
	if err != nil {
		metrics.APIErrors.WithLabelValues("similar").Inc()
		h.logger.Error("similar usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) PatternsSummary(c echo.Context) error {
	defer observe("patterns_summary", time.Now())

	asiaOnly := c.QueryParam("asia_only") == "true"
	step := xhttp.ParseFloatDefault(c.QueryParam("default_step"), 10)

	res, err := h.patterns.Summarize(c.Request().Context(), asiaOnly, step)
	if err != nil {
		metrics.APIErrors.WithLabelValues("patterns_summary").Inc()
		h.logger.Error("summary usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) UpsertTrade(c echo.Context) error {
	defer observe("journal_upsert", time.Now())

	req := &models.UpsertTradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sample, err := h.journal.Upsert(c.Request().Context(), req)
	if err != nil {
		metrics.APIErrors.WithLabelValues("journal_upsert").Inc()
		h.logger.Error("journal upsert error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, sample)
}

func (h *Handler) ListTrades(c echo.Context) error {
	defer observe("journal_list", time.Now())

	req := &models.ListTradesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	trades, err := h.journal.List(c.Request().Context(), req.Limit)
	if err != nil {
		metrics.APIErrors.WithLabelValues("journal_list").Inc()
		h.logger.Error("journal list error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, trades, int64(len(trades)))
}

func (h *Handler) DeleteTrade(c echo.Context) error {
	defer observe("journal_delete", time.Now())

	if err := h.journal.Delete(c.Request().Context(), c.Param("id")); err != nil {
		metrics.APIErrors.WithLabelValues("journal_delete").Inc()
		h.logger.Error("journal delete error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *Handler) Rebuild(c echo.Context) error {
	defer observe("rebuild", time.Now())

	req := &models.RebuildRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// rebuilds download years of candles; one at a time per client
	if !h.rl.Allow(c.RealIP()+":rebuild", 1, 0.02) {
		return xhttp.DataResponse(c, 429, "rebuild already in progress or rate limited")
	}

	anchor, err := parseAnchor(req.AnchorTime)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	report, err := h.builder.Rebuild(c.Request().Context(), req.Years, anchor)
	if err != nil {
		metrics.APIErrors.WithLabelValues("rebuild").Inc()
		h.logger.Error("rebuild error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *Handler) SnapshotStats(c echo.Context) error {
	defer observe("snapshot_stats", time.Now())

	count, minDate, maxDate, err := h.builder.Stats(c.Request().Context())
	if err != nil {
		metrics.APIErrors.WithLabelValues("snapshot_stats").Inc()
		h.logger.Error("snapshot stats error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"days":     count,
		"min_date": minDate,
		"max_date": maxDate,
	})
}

func (h *Handler) Candles(c echo.Context) error {
	defer observe("candles", time.Now())

	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, ok := xhttp.ParseTime(req.From)
	if !ok {
		return xhttp.BadRequestResponse(c, "from must be RFC3339 or unix seconds")
	}
	to, ok := xhttp.ParseTime(req.To)
	if !ok {
		return xhttp.BadRequestResponse(c, "to must be RFC3339 or unix seconds")
	}
	from, to = util.AlignFromTo(from, to, "M5")

	rows, err := h.candles.Query(c.Request().Context(), from, to, req.Limit)
	if err != nil {
		metrics.APIErrors.WithLabelValues("candles").Inc()
		h.logger.Error("candles query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func parseAnchor(s string) (*killzone.TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}
	tod, err := killzone.ParseTimeOfDay(s)
	if err != nil {
		return nil, err
	}
	return &tod, nil
}
