package finance

import "github.com/shopspring/decimal"

type taxSlab struct {
	lower decimal.Decimal
	// upper == nil означает открытый верхний диапазон
	upper *decimal.Decimal
	rate  decimal.Decimal
	// base: налог на нижней границе диапазона; при изменении шкалы пересчитывается вручную
	base decimal.Decimal
}

var taxSchedule = []taxSlab{
	{lower: decimal.Zero, upper: decimalPtr(250000), rate: decimal.Zero, base: decimal.Zero},
	{lower: decimal.NewFromInt(250000), upper: decimalPtr(500000), rate: decimal.NewFromFloat(0.05), base: decimal.Zero},
	{lower: decimal.NewFromInt(500000), upper: decimalPtr(1000000), rate: decimal.NewFromFloat(0.20), base: decimal.NewFromInt(12500)},
	{lower: decimal.NewFromInt(1000000), upper: nil, rate: decimal.NewFromFloat(0.30), base: decimal.NewFromInt(112500)},
}

// EstimateTax возвращает налог по фиксированной прогрессивной шкале (старый режим) для налогооблагаемой суммы.
func EstimateTax(taxableAmount float64) float64 {
	taxable := decimal.NewFromFloat(taxableAmount)
	if !taxable.IsPositive() {
		return 0
	}

	for _, slab := range taxSchedule {
		if slab.upper != nil && taxable.GreaterThan(*slab.upper) {
			continue
		}
		return slab.base.Add(taxable.Sub(slab.lower).Mul(slab.rate)).InexactFloat64()
	}

	// недостижимо: последний диапазон открыт сверху
	return 0
}

func decimalPtr(value int64) *decimal.Decimal {
	d := decimal.NewFromInt(value)
	return &d
}
