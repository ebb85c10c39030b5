package finance

import (
	"math"
	"sort"
	"strings"
	"time"

	"example.com/finance-dashboard/backend/internal/models"
)

const (
	// UncategorisedLabel подставляется для записей без категории.
	UncategorisedLabel = "Uncategorised"
	// InsightsLookbackDays: окно выборки расходов для аналитики по категориям.
	InsightsLookbackDays = 90

	overspendThreshold  = 1.2
	savingPotentialRate = 0.10
)

// CategoryTotal: сумма расходов по одной категории.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CategoryShare: сумма категории и ее доля от всех расходов в процентах.
type CategoryShare struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Percentage int     `json:"percentage"`
}

// Overspend описывает категорию, расходы по которой выросли больше чем на 20% к прошлому месяцу.
type Overspend struct {
	Category      string  `json:"category"`
	ThisMonth     float64 `json:"this_month"`
	LastMonth     float64 `json:"last_month"`
	PercentHigher int     `json:"percent_higher"`
}

// CategoryInsights: сравнение расходов текущего и прошлого календарного месяца.
type CategoryInsights struct {
	ThisMonthTotal  float64         `json:"this_month_total"`
	LastMonthTotal  float64         `json:"last_month_total"`
	TotalDiff       float64         `json:"total_diff"`
	Categories      []CategoryTotal `json:"categories"`
	TopCategory     *CategoryTotal  `json:"top_category"`
	SavingPotential float64         `json:"saving_potential"`
	Overspending    *Overspend      `json:"overspending"`
}

// AggregateCategories группирует расходы по категориям за текущий и прошлый месяц относительно now.
//
// Категории обходятся в порядке первого появления во входном срезе: этот порядок
// определяет и победителя при равных суммах, и единственное предупреждение о перерасходе.
func AggregateCategories(entries []models.LedgerEntry, now time.Time) CategoryInsights {
	thisYear, thisMonth := now.Year(), now.Month()
	lastYear, lastMonth := previousMonth(thisYear, thisMonth)

	thisTotals := newOrderedTotals()
	lastTotals := newOrderedTotals()
	insights := CategoryInsights{Categories: []CategoryTotal{}}

	for _, entry := range entries {
		if entry.Type != models.EntryTypeDebit {
			continue
		}

		amount := math.Abs(entry.Amount)
		year, month := entry.Date.Year(), entry.Date.Month()
		switch {
		case year == thisYear && month == thisMonth:
			thisTotals.add(categoryOf(entry), amount)
			insights.ThisMonthTotal += amount
		case year == lastYear && month == lastMonth:
			lastTotals.add(categoryOf(entry), amount)
			insights.LastMonthTotal += amount
		}
	}

	insights.TotalDiff = insights.ThisMonthTotal - insights.LastMonthTotal
	insights.SavingPotential = math.Round(insights.ThisMonthTotal * savingPotentialRate)

	for _, name := range thisTotals.order {
		total := thisTotals.sums[name]
		insights.Categories = append(insights.Categories, CategoryTotal{Category: name, Total: total})

		if insights.TopCategory == nil || total > insights.TopCategory.Total {
			insights.TopCategory = &CategoryTotal{Category: name, Total: total}
		}

		if insights.Overspending == nil {
			last := lastTotals.sums[name]
			if last > 0 && total > last*overspendThreshold {
				insights.Overspending = &Overspend{
					Category:      name,
					ThisMonth:     total,
					LastMonth:     last,
					PercentHigher: int(math.Round((total - last) / last * 100)),
				}
			}
		}
	}

	return insights
}

// CategoryShares считает сумму и долю каждой категории от всех расходов; сортировка по убыванию суммы.
func CategoryShares(entries []models.LedgerEntry) []CategoryShare {
	totals := newOrderedTotals()
	var grandTotal float64

	for _, entry := range entries {
		if entry.Type != models.EntryTypeDebit {
			continue
		}
		amount := math.Abs(entry.Amount)
		totals.add(categoryOf(entry), amount)
		grandTotal += amount
	}

	shares := make([]CategoryShare, 0, len(totals.order))
	for _, name := range totals.order {
		total := totals.sums[name]
		shares = append(shares, CategoryShare{
			Category:   name,
			Total:      total,
			Percentage: Percentage(total, grandTotal),
		})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Total > shares[j].Total
	})

	return shares
}

func previousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func categoryOf(entry models.LedgerEntry) string {
	label := strings.TrimSpace(entry.CategoryLabel())
	if label == "" {
		return UncategorisedLabel
	}
	return label
}

type orderedTotals struct {
	order []string
	sums  map[string]float64
}

func newOrderedTotals() *orderedTotals {
	return &orderedTotals{sums: make(map[string]float64)}
}

func (t *orderedTotals) add(name string, amount float64) {
	if _, ok := t.sums[name]; !ok {
		t.order = append(t.order, name)
	}
	t.sums[name] += amount
}
