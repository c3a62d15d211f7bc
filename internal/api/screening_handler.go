package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/remessas-global/payment-screening/internal/config"
	"github.com/remessas-global/payment-screening/internal/domain"
	"github.com/remessas-global/payment-screening/internal/service"
)

// ScreeningHandler exposes the screening service over HTTP. All input
// validation happens here; the core receives only well-formed requests.
type ScreeningHandler struct {
	svc      *service.ScreeningService
	rulesCfg *config.RulesHolder
}

func NewScreeningHandler(svc *service.ScreeningService, rulesCfg *config.RulesHolder) *ScreeningHandler {
	return &ScreeningHandler{
		svc:      svc,
		rulesCfg: rulesCfg,
	}
}

// batchRequest is the wire format for batch screening.
type batchRequest struct {
	Transactions []domain.TransactionRequest `json:"transactions"`
}

// ScreenTransaction handles POST /screening
func (h *ScreeningHandler) ScreenTransaction(c echo.Context) error {
	var req domain.TransactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if msg, ok := validateRequest(req); !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}

	result := h.svc.Screen(c.Request().Context(), req)
	return c.JSON(http.StatusOK, result)
}

// ScreenBatch handles POST /screening/batch
func (h *ScreeningHandler) ScreenBatch(c echo.Context) error {
	var batch batchRequest
	if err := c.Bind(&batch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	for _, req := range batch.Transactions {
		if msg, ok := validateRequest(req); !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
		}
	}

	result := h.svc.ScreenBatch(c.Request().Context(), batch.Transactions)
	return c.JSON(http.StatusOK, result)
}

// GetTransactions handles GET /transactions/:customer_id
// The customer id is the sender name; the lookback defaults to 24 hours.
func (h *ScreeningHandler) GetTransactions(c echo.Context) error {
	sender := c.Param("customer_id")

	hours := 24
	if raw := c.QueryParam("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid hours parameter"})
		}
		hours = parsed
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	txns := h.svc.Transactions(sender, &since)
	if txns == nil {
		txns = []domain.StoredTransaction{}
	}
	return c.JSON(http.StatusOK, txns)
}

// GetRules handles GET /rules
func (h *ScreeningHandler) GetRules(c echo.Context) error {
	return c.JSON(http.StatusOK, h.rulesCfg.Snapshot())
}

// UpdateRules handles PUT /rules. The config is replaced wholesale;
// in-flight screenings keep the snapshot they started with. Fields
// omitted from the body take their default values, never zero: a zero
// fuzzy threshold would turn the sanctions rule into a match-everything
// veto.
func (h *ScreeningHandler) UpdateRules(c echo.Context) error {
	cfg := domain.DefaultRulesConfig()
	if err := c.Bind(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid rules config"})
	}

	h.rulesCfg.Replace(cfg)
	return c.JSON(http.StatusOK, cfg)
}

// GetAuditLog handles GET /audit
func (h *ScreeningHandler) GetAuditLog(c echo.Context) error {
	var filter domain.AuditFilter

	if txID := c.QueryParam("transaction_id"); txID != "" {
		filter.TransactionID = &txID
	}

	since, err := parseTimeParam(c, "from_date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid from_date"})
	}
	filter.Since = since

	until, err := parseTimeParam(c, "to_date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid to_date"})
	}
	filter.Until = until

	entries, err := h.svc.AuditLog(filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to retrieve audit log"})
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// SearchAuditLog handles GET /audit/search
func (h *ScreeningHandler) SearchAuditLog(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing query parameter 'q'"})
	}

	from := 0
	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid from parameter"})
		}
		from = parsed
	}

	size := 20
	if raw := c.QueryParam("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid size parameter"})
		}
		size = parsed
	}

	entries, err := h.svc.SearchAudit(c.Request().Context(), query, from, size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, entries)
}

// ArchiveAuditLog handles POST /audit/archive
func (h *ScreeningHandler) ArchiveAuditLog(c echo.Context) error {
	since, err := parseTimeParam(c, "from_date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid from_date"})
	}
	until, err := parseTimeParam(c, "to_date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid to_date"})
	}

	batchID, count, err := h.svc.ArchiveAuditLog(c.Request().Context(), since, until)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "archive failed"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"batch_id": batchID,
		"archived": count,
	})
}

// RegisterRoutes registers the screening API routes.
func (h *ScreeningHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/screening", h.ScreenTransaction)
	g.POST("/screening/batch", h.ScreenBatch)
	g.GET("/transactions/:customer_id", h.GetTransactions)
	g.GET("/rules", h.GetRules)
	g.PUT("/rules", h.UpdateRules)
}

// RegisterAuditRoutes registers the audit routes, typically behind JWT.
func (h *ScreeningHandler) RegisterAuditRoutes(g *echo.Group) {
	g.GET("", h.GetAuditLog)
	g.GET("/search", h.SearchAuditLog)
	g.POST("/archive", h.ArchiveAuditLog)
}

// validateRequest rejects structurally unusable requests before they reach
// the core. Amount is deliberately unchecked: negative and zero amounts
// are screened like any other.
func validateRequest(req domain.TransactionRequest) (string, bool) {
	switch {
	case req.SenderName == "":
		return "sender_name is required", false
	case req.RecipientName == "":
		return "recipient_name is required", false
	case req.Currency == "":
		return "currency is required", false
	case req.DestinationCountry == "":
		return "destination_country is required", false
	case req.Timestamp.IsZero():
		return "timestamp is required", false
	}
	return "", true
}

func parseTimeParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
