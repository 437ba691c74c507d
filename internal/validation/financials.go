package validation

import "github.com/bdticketpro/ticketpro/internal/pkg/money"

// RiskLevel - оценка риска закупки (только для отображения)
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// DefaultMarkupPercentage - наценка по умолчанию для расчета цены продажи
const DefaultMarkupPercentage = 20.0

// Пороги классификации риска
const (
	highRiskTotalCost   = 5000000.0 // 50 лакх
	mediumRiskTotalCost = 1000000.0 // 10 лакх
	highRiskMargin      = 10.0
	mediumRiskMargin    = 15.0
	highRiskQuantity    = 500
	mediumRiskQuantity  = 200
)

// Financials - расчет закупки партии
type Financials struct {
	BuyingPrice      float64   `json:"buying_price"`
	SellingPrice     float64   `json:"selling_price"`
	Quantity         int       `json:"quantity"`
	MarkupPercentage float64   `json:"markup_percentage"`
	TotalCost        float64   `json:"total_cost"`
	Revenue          float64   `json:"revenue"`
	Profit           float64   `json:"profit"`
	Margin           float64   `json:"margin"`
	Risk             RiskLevel `json:"risk"`
}

// CalculateFinancials считает цену продажи, выручку, прибыль, маржу и уровень риска
func CalculateFinancials(buyingPrice float64, quantity int, markupPercentage float64) Financials {
	qty := float64(quantity)
	selling := money.SafeAdd(buyingPrice, money.SafeMultiply(buyingPrice, markupPercentage/100))
	totalCost := money.SafeMultiply(buyingPrice, qty)
	revenue := money.SafeMultiply(selling, qty)
	profit := money.CalculateProfit(selling, buyingPrice, qty)
	margin := money.CalculatePercentage(profit, revenue)

	return Financials{
		BuyingPrice:      buyingPrice,
		SellingPrice:     selling,
		Quantity:         quantity,
		MarkupPercentage: markupPercentage,
		TotalCost:        totalCost,
		Revenue:          revenue,
		Profit:           profit,
		Margin:           margin,
		Risk:             classifyRisk(totalCost, margin, quantity),
	}
}

func classifyRisk(totalCost, margin float64, quantity int) RiskLevel {
	switch {
	case totalCost > highRiskTotalCost || margin < highRiskMargin || quantity > highRiskQuantity:
		return RiskHigh
	case totalCost > mediumRiskTotalCost || margin < mediumRiskMargin || quantity > mediumRiskQuantity:
		return RiskMedium
	default:
		return RiskLow
	}
}
