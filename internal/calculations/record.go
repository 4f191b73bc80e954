package calculations

import "github.com/shopspring/decimal"

// Pricing содержит обе стороны сравнения прибыли и убытка. Нулевая CostingPrice
// означает сервисный сбор: вся цена продажи идёт в прибыль.
type Pricing struct {
	CostingPrice decimal.Decimal
	SellingPrice decimal.Decimal
}

// MonetaryRecord описывает денежные поля, общие для всех ресурсов ERP.
// Каждый ресурс заполняет только часть из них.
type MonetaryRecord struct {
	Components []CostComponent
	Paid       decimal.Decimal
	Plan       PaymentPlan
	Pricing    *Pricing
}

// RecordSummary содержит все значения, вычисленные по MonetaryRecord
type RecordSummary struct {
	Bill       BillSummary
	Plan       PaymentPlan
	Schedule   []ScheduleEntry
	ProfitLoss *ProfitLoss
}

// Summarize пересчитывает вычисляемые поля только по исходным полям записи
func (r MonetaryRecord) Summarize() (*RecordSummary, error) {
	summary := &RecordSummary{
		Bill: AggregateBill(r.Components, r.Paid),
		Plan: r.Plan,
	}

	if plan, ok := r.Plan.(Installment); ok {
		derived, err := InstallmentSchedule(plan.StartDate, plan.Count, plan.PerInstallmentAmount)
		if err != nil {
			return nil, err
		}
		summary.Plan = derived.Plan
		summary.Schedule = derived.Schedule
	}
	if plan, ok := r.Plan.(OneTime); ok {
		summary.Plan = OneTime{PaymentDate: DateOnly(plan.PaymentDate)}
	}

	if r.Pricing != nil {
		pl := CalculateProfitLoss(r.Pricing.CostingPrice, r.Pricing.SellingPrice)
		summary.ProfitLoss = &pl
	}

	return summary, nil
}
