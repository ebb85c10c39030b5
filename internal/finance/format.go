package finance

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const rupeeSign = "₹"

// FormatINR форматирует сумму в рупиях без дробной части с индийской группировкой разрядов.
// NaN и бесконечности форматируются как ноль.
func FormatINR(amount float64) string {
	amount = finiteOrZero(amount)
	formatted := formatGrouped(decimal.NewFromFloat(amount), 0)
	if strings.HasPrefix(formatted, "-") {
		return "-" + rupeeSign + formatted[1:]
	}
	return rupeeSign + formatted
}

// FormatAmount форматирует сумму с двумя знаками после запятой и индийской группировкой.
func FormatAmount(amount float64) string {
	return formatGrouped(decimal.NewFromFloat(finiteOrZero(amount)), 2)
}

// decimal.NewFromFloat паникует на NaN и Inf.
func finiteOrZero(amount float64) float64 {
	if !isFinite(amount) {
		return 0
	}
	return amount
}

// Percentage возвращает округленную долю part от total в процентах; при total == 0 возвращает 0.
func Percentage(part, total float64) int {
	if total == 0 || math.IsNaN(total) || math.IsNaN(part) {
		return 0
	}
	return int(math.Round(part / total * 100))
}

func formatGrouped(value decimal.Decimal, places int32) string {
	negative := value.IsNegative()
	text := value.Abs().StringFixed(places)

	whole, fraction := text, ""
	if idx := strings.IndexByte(text, '.'); idx >= 0 {
		whole, fraction = text[:idx], text[idx:]
	}

	grouped := groupIndian(whole)
	if negative && strings.Trim(whole+fraction, "0.") != "" {
		return "-" + grouped + fraction
	}
	return grouped + fraction
}

// groupIndian ставит разделители по схеме 12,34,56,789: последние три цифры, затем пары.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	parts := make([]string, 0, len(head)/2+2)
	if len(head)%2 == 1 {
		parts = append(parts, head[:1])
		head = head[1:]
	}
	for len(head) > 0 {
		parts = append(parts, head[:2])
		head = head[2:]
	}
	parts = append(parts, tail)
	return strings.Join(parts, ",")
}
