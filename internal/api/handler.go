package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"historyScope/internal/history"
	"historyScope/internal/model"
)

// HistoryService is the query operation exposed over HTTP.
type HistoryService interface {
	GetHistory(ctx context.Context, q model.HistoryQuery) (model.HistoryPage, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves history queries.
type Handler struct {
	service HistoryService
	logger  *zap.Logger
}

func NewHandler(service HistoryService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// GetHistory handles GET /v1/history?wallet=&chains=&limit=&page=.
func (h *Handler) GetHistory(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	h.respond(c, q)
}

// PostHistory handles POST /v1/history with a JSON query body.
func (h *Handler) PostHistory(c *gin.Context) {
	var q model.HistoryQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	h.respond(c, q)
}

func (h *Handler) respond(c *gin.Context, q model.HistoryQuery) {
	page, err := h.service.GetHistory(c.Request.Context(), q)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Warn("history query failed", zap.String("wallet", q.Wallet), zap.Error(err))
		}
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, history.ErrInvalidWallet), errors.Is(err, history.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func parseQuery(c *gin.Context) (model.HistoryQuery, error) {
	q := model.HistoryQuery{Wallet: c.Query("wallet")}
	if q.Wallet == "" {
		q.Wallet = c.Query("walletAddress")
	}

	if raw := c.Query("chains"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return q, errors.New("invalid chain id: " + part)
			}
			q.Chains = append(q.Chains, id)
		}
	}

	var err error
	if q.Limit, err = intParam(c, "limit"); err != nil {
		return q, err
	}
	if q.Page, err = intParam(c, "page"); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("invalid " + name + ": " + raw)
	}
	return v, nil
}
