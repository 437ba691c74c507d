// Package money содержит безопасные арифметические операции для денежных сумм и процентов.
// Ни одна функция не паникует и не возвращает ошибку: некорректный вход (NaN, ±Inf,
// деление на ноль) превращается в ноль, чтобы финансовые отчеты не падали на неполных данных.
package money

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// printer форматирует суммы с индийской группировкой разрядов (1,00,000), принятой в Бангладеш
var printer = message.NewPrinter(language.MustParse("en-IN"))

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round2 округляет значение до двух знаков после запятой
func Round2(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return math.Round(v*100) / 100
}

// RoundWhole округляет сумму до целой денежной единицы
func RoundWhole(v float64) int64 {
	if !isFinite(v) {
		return 0
	}
	return int64(math.Round(v))
}

// SafeAdd суммирует значения, пропуская NaN/Inf, с округлением после каждого шага
func SafeAdd(values ...float64) float64 {
	var sum float64
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		sum = Round2(sum + v)
	}
	return sum
}

// SafeMultiply возвращает round(a*b, 2) или 0 для некорректного входа
func SafeMultiply(a, b float64) float64 {
	if !isFinite(a) || !isFinite(b) {
		return 0
	}
	return Round2(a * b)
}

// SafeDivide возвращает round(numerator/denominator, 2) или 0 при нулевом/некорректном делителе
func SafeDivide(numerator, denominator float64) float64 {
	if !isFinite(numerator) || !isFinite(denominator) || denominator == 0 {
		return 0
	}
	return Round2(numerator / denominator)
}

// CalculatePercentage возвращает numerator/denominator в процентах с двумя знаками
func CalculatePercentage(numerator, denominator float64) float64 {
	if !isFinite(numerator) || !isFinite(denominator) || denominator == 0 {
		return 0
	}
	return Round2(numerator / denominator * 100)
}

// CalculateProfit возвращает (selling-buying)*quantity с двумя знаками
func CalculateProfit(sellingPrice, buyingPrice, quantity float64) float64 {
	if !isFinite(sellingPrice) || !isFinite(buyingPrice) || !isFinite(quantity) {
		return 0
	}
	return Round2((sellingPrice - buyingPrice) * quantity)
}

// FormatCurrency форматирует сумму с группировкой разрядов и не более чем двумя знаками дроби
func FormatCurrency(amount float64) string {
	if !isFinite(amount) {
		return "0"
	}
	return printer.Sprintf("%v", number.Decimal(Round2(amount), number.MaxFractionDigits(2)))
}
