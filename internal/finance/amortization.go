package finance

import "math"

const (
	MaxLoanTermYears   = 50
	MaxLoanRatePercent = 100
)

// LoanInput задает параметры кредита с ежемесячным начислением процентов.
type LoanInput struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermYears         int     `json:"term_years"`
}

// Amortization содержит результат расчета аннуитетного платежа (EMI).
type Amortization struct {
	MonthlyRate         float64 `json:"monthly_rate"`
	TermMonths          int     `json:"term_months"`
	Installment         float64 `json:"installment"`
	TotalPayment        float64 `json:"total_payment"`
	TotalInterest       float64 `json:"total_interest"`
	PrincipalPercentage float64 `json:"principal_percentage"`
	InterestPercentage  float64 `json:"interest_percentage"`
}

// ScheduleRow описывает один месяц графика погашения.
type ScheduleRow struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// Validate проверяет параметры кредита до расчета.
func (in LoanInput) Validate() error {
	if math.IsNaN(in.Principal) || math.IsInf(in.Principal, 0) {
		return invalid("principal", "must be a finite number")
	}
	if in.Principal <= 0 {
		return invalid("principal", "must be greater than 0")
	}
	if in.Principal > MaxAmount {
		return invalid("principal", "exceeds maximum amount")
	}
	if math.IsNaN(in.AnnualRatePercent) || math.IsInf(in.AnnualRatePercent, 0) {
		return invalid("annual_rate_percent", "must be a finite number")
	}
	if in.AnnualRatePercent < 0 {
		return invalid("annual_rate_percent", "must not be negative")
	}
	if in.AnnualRatePercent > MaxLoanRatePercent {
		return invalid("annual_rate_percent", "must not exceed 100")
	}
	if in.TermYears < 1 {
		return invalid("term_years", "must be at least 1")
	}
	if in.TermYears > MaxLoanTermYears {
		return invalid("term_years", "must not exceed 50")
	}
	return nil
}

// Amortize рассчитывает фиксированный ежемесячный платеж, полную сумму выплат и долю процентов.
func Amortize(in LoanInput) (Amortization, error) {
	if err := in.Validate(); err != nil {
		return Amortization{}, err
	}

	termMonths := in.TermYears * 12
	monthlyRate := in.AnnualRatePercent / 12 / 100

	var installment float64
	if monthlyRate == 0 {
		installment = in.Principal / float64(termMonths)
	} else {
		growth := math.Pow(1+monthlyRate, float64(termMonths))
		installment = in.Principal * monthlyRate * growth / (growth - 1)
	}

	totalPayment := installment * float64(termMonths)
	if !isFinite(installment) || !isFinite(totalPayment) {
		return Amortization{}, invalid("", "loan parameters produce a non-finite payment")
	}
	principalPercentage := in.Principal / totalPayment * 100

	return Amortization{
		MonthlyRate:         monthlyRate,
		TermMonths:          termMonths,
		Installment:         installment,
		TotalPayment:        totalPayment,
		TotalInterest:       totalPayment - in.Principal,
		PrincipalPercentage: principalPercentage,
		InterestPercentage:  100 - principalPercentage,
	}, nil
}

// Schedule строит помесячный график погашения: проценты на остаток, остальное в тело долга.
func Schedule(in LoanInput) ([]ScheduleRow, error) {
	result, err := Amortize(in)
	if err != nil {
		return nil, err
	}

	rows := make([]ScheduleRow, 0, result.TermMonths)
	balance := in.Principal
	for month := 1; month <= result.TermMonths; month++ {
		interest := balance * result.MonthlyRate
		principal := result.Installment - interest
		balance -= principal

		// последний платеж гасит накопленную погрешность float64
		if month == result.TermMonths || balance < 0 {
			balance = 0
		}

		rows = append(rows, ScheduleRow{
			Month:     month,
			Payment:   result.Installment,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}

	return rows, nil
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
