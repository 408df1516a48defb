package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fxhedge/hedgegate/internal/gateway"
	"github.com/fxhedge/hedgegate/internal/middleware"
	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/pkg/apperrors"
	"github.com/fxhedge/hedgegate/internal/schema"
	"github.com/fxhedge/hedgegate/internal/service"
)

// HedgeHandler exposes quoting, risk planning and execution. The portal and
// the admin control room each get one, bound to their own gateway client.
type HedgeHandler struct {
	svc *service.HedgeService
}

func NewHedgeHandler(svc *service.HedgeService) *HedgeHandler {
	return &HedgeHandler{svc: svc}
}

func (h *HedgeHandler) Quote(c *gin.Context) {
	input, ok := bindJSON(c)
	if !ok {
		return
	}
	middleware.AddAuditContext(c, "endpoint", model.EndpointBindingQuote)

	resp, err := h.svc.Quote(c.Request.Context(), middleware.TenantFromContext(c), input, forwardHeaders(c)...)
	if err != nil {
		auditFailure(c, err)
		_ = c.Error(err)
		return
	}
	middleware.AddAuditContext(c, "price", resp.Price)
	c.JSON(http.StatusOK, resp)
}

func (h *HedgeHandler) Plan(c *gin.Context) {
	input, ok := bindJSON(c)
	if !ok {
		return
	}
	middleware.AddAuditContext(c, "endpoint", model.EndpointRiskPlan)

	resp, err := h.svc.Plan(c.Request.Context(), middleware.TenantFromContext(c), input, forwardHeaders(c)...)
	if err != nil {
		auditFailure(c, err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HedgeHandler) Execute(c *gin.Context) {
	input, ok := bindJSON(c)
	if !ok {
		return
	}
	middleware.AddAuditContext(c, "endpoint", model.EndpointExecution)

	opts := forwardHeaders(c)
	if key := c.GetHeader(middleware.HeaderIdempotencyKey); key != "" {
		opts = append(opts, gateway.WithHeader(middleware.HeaderIdempotencyKey, key))
	}

	resp, err := h.svc.Execute(c.Request.Context(), middleware.TenantFromContext(c), input, opts...)
	if err != nil {
		auditFailure(c, err)
		_ = c.Error(err)
		return
	}

	ids := make([]string, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		ids = append(ids, o.OrderID)
	}
	middleware.AddAuditContext(c, "order_ids", ids)
	c.JSON(http.StatusOK, resp)
}

// bindJSON decodes the body into the generic form the schemas validate.
func bindJSON(c *gin.Context) (any, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		_ = c.Error(apperrors.NewInvalidRequest("failed to read request body"))
		return nil, false
	}
	input, err := schema.DecodeJSON(raw)
	if err != nil {
		_ = c.Error(apperrors.NewInvalidRequest("request body must be a JSON document"))
		return nil, false
	}
	return input, true
}

func forwardHeaders(c *gin.Context) []gateway.RequestOption {
	if id := c.Writer.Header().Get(middleware.HeaderRequestID); id != "" {
		return []gateway.RequestOption{gateway.WithHeader(middleware.HeaderRequestID, id)}
	}
	return nil
}

func auditFailure(c *gin.Context, err error) {
	middleware.AddAuditContext(c, "error", err.Error())

	var gerr *gateway.GatewayError
	var nerr *gateway.NetworkError
	var rerr *gateway.ResponseError
	switch {
	case errors.As(err, &gerr):
		middleware.AddAuditContext(c, "upstream_status", gerr.Status)
	case errors.As(err, &nerr), errors.As(err, &rerr):
	default:
		return
	}
	middleware.AddAuditContext(c, "error_code", gateway.ErrorCode(err))
}
