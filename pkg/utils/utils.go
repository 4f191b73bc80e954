package utils

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var displayPrinter = message.NewPrinter(language.English)

// Round2 округляет сумму до 2 знаков, половину от нуля
func Round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// IsFinite проверяет, что число не NaN и не бесконечность
func IsFinite(value float64) bool {
	return !math.IsInf(value, 0) && !math.IsNaN(value)
}

// Fixed2 выводит сумму ровно с двумя знаками после точки ("7000.00")
func Fixed2(value decimal.Decimal) string {
	return value.StringFixed(2)
}

// Display форматирует сумму для людей: разряды через запятую, два знака ("7,000.00").
// Дробная часть берётся из десятичного представления без перехода к float.
func Display(value decimal.Decimal) string {
	rounded := Round2(value)
	intPart, frac, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")

	grouped := intPart
	if whole := rounded.Abs().Truncate(0).BigInt(); whole.IsInt64() {
		grouped = displayPrinter.Sprintf("%d", whole.Int64())
	}

	sign := ""
	if rounded.Sign() < 0 {
		sign = "-"
	}
	return sign + grouped + "." + frac
}
