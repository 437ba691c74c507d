package http

import (
	"net/http"
	"time"

	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/pkg/money"
	"github.com/bdticketpro/ticketpro/internal/validation"
)

// FinancePreviewRequest - предварительный расчет закупки
type FinancePreviewRequest struct {
	BuyingPrice      float64  `json:"buying_price" validate:"gt=0"`
	Quantity         int      `json:"quantity" validate:"gt=0"`
	MarkupPercentage *float64 `json:"markup_percentage,omitempty" validate:"omitempty,gte=0,lte=1000"`
}

// ValidateBatchRequest - закупка партии у агента для проверки перед сохранением
type ValidateBatchRequest struct {
	AgentName        string   `json:"agent_name"`
	AgentContact     string   `json:"agent_contact,omitempty"`
	AgentAddress     string   `json:"agent_address,omitempty"`
	BuyingPrice      float64  `json:"buying_price"`
	Quantity         int      `json:"quantity"`
	FlightDate       string   `json:"flight_date"`
	MarkupPercentage *float64 `json:"markup_percentage,omitempty" validate:"omitempty,gte=0,lte=1000"`
}

// FinancePreview - расчет вместе с суммами в формате для отображения
type FinancePreview struct {
	validation.Financials
	Formatted map[string]string `json:"formatted"`
}

// FinanceHandler считает закупки и проверяет их до сохранения
type FinanceHandler struct {
	defaultMarkup float64
	logger        logger.Logger
	now           func() time.Time
}

// NewFinanceHandler создает новый handler
func NewFinanceHandler(defaultMarkup float64, logger logger.Logger) *FinanceHandler {
	return &FinanceHandler{
		defaultMarkup: defaultMarkup,
		logger:        logger,
		now:           time.Now,
	}
}

// Preview считает цену продажи, выручку, прибыль, маржу и риск
// POST /api/v1/finance/preview
func (h *FinanceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req FinancePreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	respondData(w, http.StatusOK, h.preview(req.BuyingPrice, req.Quantity, req.MarkupPercentage))
}

// ValidateBatch проверяет закупку целиком и возвращает результат как данные,
// ошибки полей не превращаются в 422
// POST /api/v1/finance/validate-batch
func (h *FinanceHandler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req ValidateBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	flightDate, result := validation.ParseCalendarDate(req.FlightDate, "Flight date")
	if result.IsValid {
		result.Merge(validation.ValidateTicketBatch(validation.TicketBatchInput{
			AgentName:    req.AgentName,
			AgentContact: req.AgentContact,
			AgentAddress: req.AgentAddress,
			BuyingPrice:  req.BuyingPrice,
			Quantity:     req.Quantity,
			FlightDate:   flightDate,
		}, h.now()))
	}

	payload := map[string]interface{}{
		"validation": result,
	}
	if result.IsValid {
		payload["financials"] = h.preview(req.BuyingPrice, req.Quantity, req.MarkupPercentage)
	}

	respondData(w, http.StatusOK, payload)
}

func (h *FinanceHandler) preview(buyingPrice float64, quantity int, markup *float64) FinancePreview {
	m := h.defaultMarkup
	if markup != nil {
		m = *markup
	}

	f := validation.CalculateFinancials(buyingPrice, quantity, m)

	return FinancePreview{
		Financials: f,
		Formatted: map[string]string{
			"buying_price":  money.FormatCurrency(f.BuyingPrice),
			"selling_price": money.FormatCurrency(f.SellingPrice),
			"total_cost":    money.FormatCurrency(f.TotalCost),
			"revenue":       money.FormatCurrency(f.Revenue),
			"profit":        money.FormatCurrency(f.Profit),
		},
	}
}
