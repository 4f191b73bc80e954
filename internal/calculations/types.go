package calculations

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitStatus классифицирует сумму прибыли или убытка
type ProfitStatus string

const (
	StatusProfit  ProfitStatus = "profit"
	StatusLoss    ProfitStatus = "loss"
	StatusNeutral ProfitStatus = "neutral"
)

// CostComponent представляет одну именованную составляющую итога
type CostComponent struct {
	Name   string
	Amount decimal.Decimal
}

// BillSummary представляет вычисленные итоги по составляющим
type BillSummary struct {
	Components []CostComponent
	Total      decimal.Decimal
	Paid       decimal.Decimal
	Due        decimal.Decimal
	Overpaid   decimal.Decimal
}

// ScheduleEntry представляет один платёж в графике
type ScheduleEntry struct {
	Number           int
	DueDate          time.Time
	Amount           decimal.Decimal
	CumulativeAmount decimal.Decimal
}

// PaymentPlan это OneTime или Installment
type PaymentPlan interface {
	planKind() string
}

// OneTime представляет разовую оплату в PaymentDate
type OneTime struct {
	PaymentDate time.Time
}

// Installment представляет рассрочку из Count ежемесячных платежей с StartDate.
// EndDate вычисляется, см. InstallmentEndDate.
type Installment struct {
	Count                int
	PerInstallmentAmount decimal.Decimal
	StartDate            time.Time
	EndDate              time.Time
}

func (OneTime) planKind() string     { return PlanOneTime }
func (Installment) planKind() string { return PlanInstallment }

// Виды плана в том виде, как их присылает клиент
const (
	PlanOneTime     = "one-time"
	PlanInstallment = "installment"
)

// PlanKind возвращает имя плана для JSON или "" для nil
func PlanKind(p PaymentPlan) string {
	if p == nil {
		return ""
	}
	return p.planKind()
}

// ProfitLoss представляет сравнение себестоимости и цены продажи
type ProfitLoss struct {
	CostingPrice decimal.Decimal
	SellingPrice decimal.Decimal
	Amount       decimal.Decimal
	Percentage   decimal.Decimal
	Status       ProfitStatus
}

// InstallmentSummary представляет полностью вычисленный план рассрочки
type InstallmentSummary struct {
	Plan        Installment
	TotalAmount decimal.Decimal
	Schedule    []ScheduleEntry
}
