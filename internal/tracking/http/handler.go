// Package http provides HTTP handlers for carrier lookups, lookup history and manual reconciliation.
package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/parceltrack/internal/httputil"
	"github.com/allisson/parceltrack/internal/tracking/domain"
	"github.com/allisson/parceltrack/internal/tracking/http/dto"
	trackingUseCase "github.com/allisson/parceltrack/internal/tracking/usecase"
	customValidation "github.com/allisson/parceltrack/internal/validation"
)

// Refresher starts an out-of-schedule reconciliation pass.
type Refresher interface {
	Trigger() error
}

// TrackingHandler handles HTTP requests for tracking lookups.
type TrackingHandler struct {
	trackingUseCase trackingUseCase.TrackingUseCase
	refresher       Refresher
	logger          *slog.Logger
}

// NewTrackingHandler creates a new tracking handler. refresher may be nil when the
// polling scheduler is disabled.
func NewTrackingHandler(
	useCase trackingUseCase.TrackingUseCase,
	refresher Refresher,
	logger *slog.Logger,
) *TrackingHandler {
	return &TrackingHandler{
		trackingUseCase: useCase,
		refresher:       refresher,
		logger:          logger,
	}
}

// TrackHandler looks up one tracking code.
// GET /v1/tracking/codes/:code
func (h *TrackingHandler) TrackHandler(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if err := dto.ValidateTrackingCode(code); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	info, err := h.trackingUseCase.Track(c.Request.Context(), code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, info)
}

// BatchHandler looks up several codes at once. Per-code failures are reported in the
// "error" field of each entry.
// POST /v1/tracking/batch
func (h *TrackingHandler) BatchHandler(c *gin.Context) {
	var req dto.TrackBatchRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	results, err := h.trackingUseCase.TrackBatch(c.Request.Context(), req.TrackingCodes)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, results)
}

// CheckCriticalHandler returns the lookups whose latest status is critical.
// GET /v1/tracking/critical?tracking_codes=A&tracking_codes=B
func (h *TrackingHandler) CheckCriticalHandler(c *gin.Context) {
	codes := c.QueryArray("tracking_codes")
	if err := dto.ValidateTrackingCodes(codes); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	critical, err := h.trackingUseCase.CheckCritical(c.Request.Context(), codes)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, critical)
}

// StatusHandler reports carrier reachability. It always answers 200; an unreachable
// carrier is reported as "offline".
// GET /v1/tracking/status
func (h *TrackingHandler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.trackingUseCase.APIStatus(c.Request.Context()))
}

// ListHistoryHandler returns the most recent lookups.
// GET /v1/tracking/history?limit=50
func (h *TrackingHandler) ListHistoryHandler(c *gin.Context) {
	limit, err := httputil.ParseLimit(c, 50, 100)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.trackingUseCase.ListHistory(c.Request.Context(), limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapHistoryToListResponse(entries))
}

// ClearHistoryHandler deletes the lookup history.
// DELETE /v1/tracking/history
func (h *TrackingHandler) ClearHistoryHandler(c *gin.Context) {
	count, err := h.trackingUseCase.ClearHistory(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClearHistoryResponse(count))
}

// RefreshHandler starts a reconciliation pass without waiting for it.
// POST /v1/tracking/refresh
// Returns 202 Accepted, or 409 Conflict when a pass is already running.
func (h *TrackingHandler) RefreshHandler(c *gin.Context) {
	if h.refresher == nil {
		httputil.HandleErrorGin(c, domain.ErrSchedulerNotRunning, h.logger)
		return
	}

	if err := h.refresher.Trigger(); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.RefreshResponse{Message: "reconciliation pass started"})
}
