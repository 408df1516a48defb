package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fxhedge/hedgegate/internal/middleware"
	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
)

type TelemetrySource interface {
	List(ctx context.Context, q model.TelemetryQuery) ([]model.TelemetryEvent, error)
}

type TelemetryHandler struct {
	source TelemetrySource
	stream http.Handler
}

func NewTelemetryHandler(source TelemetrySource, stream http.Handler) *TelemetryHandler {
	return &TelemetryHandler{source: source, stream: stream}
}

// List serves the admin view over every attempt.
func (h *TelemetryHandler) List(c *gin.Context) {
	q, err := telemetryQuery(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respond(c, q)
}

// ListOwn serves the portal view: callers only see their own attempts.
func (h *TelemetryHandler) ListOwn(c *gin.Context) {
	q, err := telemetryQuery(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	userID := c.GetHeader(middleware.HeaderUserID)
	if userID == "" {
		_ = c.Error(apperrors.NewInvalidRequest(middleware.HeaderUserID + " header is required"))
		return
	}
	q.UserID = userID
	h.respond(c, q)
}

func (h *TelemetryHandler) Stream(c *gin.Context) {
	h.stream.ServeHTTP(c.Writer, c.Request)
}

func (h *TelemetryHandler) respond(c *gin.Context, q model.TelemetryQuery) {
	events, err := h.source.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(apperrors.New(apperrors.ErrInternal, "failed to list telemetry", err))
		return
	}
	if events == nil {
		events = []model.TelemetryEvent{}
	}
	c.JSON(http.StatusOK, events)
}

func telemetryQuery(c *gin.Context) (model.TelemetryQuery, error) {
	var q model.TelemetryQuery
	if raw := c.Query("endpoint"); raw != "" {
		ep := model.Endpoint(raw)
		if !ep.Valid() {
			return q, apperrors.NewInvalidRequest("unknown endpoint " + strconv.Quote(raw))
		}
		q.Endpoint = ep
	}
	switch status := model.TelemetryStatus(c.Query("status")); status {
	case "", model.TelemetrySuccess, model.TelemetryError:
		q.Status = status
	default:
		return q, apperrors.NewInvalidRequest("status must be success or error")
	}
	q.UserID = c.Query("user_id")
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.Limit = n
		}
	}
	var err error
	if q.From, err = queryTime(c, "from"); err != nil {
		return q, err
	}
	if q.To, err = queryTime(c, "to"); err != nil {
		return q, err
	}
	return q, nil
}

func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := parseTime(raw)
	if err != nil {
		return nil, apperrors.NewInvalidRequest(key + ": " + err.Error())
	}
	return &t, nil
}
