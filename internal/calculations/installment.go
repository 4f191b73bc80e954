package calculations

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/erp-finance-summary/pkg/utils"
)

// ErrInvalidInstallmentCount возвращается, если платежей меньше одного
var ErrInvalidInstallmentCount = errors.New("installment count must be at least 1")

// DateOnly отбрасывает время суток, сохраняя дату и часовой пояс
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// AddMonthsClamped сдвигает дату на целое число месяцев с тем же числом месяца,
// прижатым к последнему дню целевого месяца (31 янв + 1 месяц = 28/29 фев).
func AddMonthsClamped(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	loc := date.Location()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, loc)
	if last := daysIn(target.Year(), target.Month(), loc); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, loc)
}

// InstallmentEndDate возвращает дату последнего из count ежемесячных платежей.
// Единственный платёж приходится на дату начала.
func InstallmentEndDate(start time.Time, count int) (time.Time, error) {
	if count < 1 {
		return time.Time{}, ErrInvalidInstallmentCount
	}
	return AddMonthsClamped(DateOnly(start), count-1), nil
}

// DerivePlan заполняет вычисляемые поля плана рассрочки
func DerivePlan(p Installment) (Installment, error) {
	end, err := InstallmentEndDate(p.StartDate, p.Count)
	if err != nil {
		return Installment{}, err
	}
	p.StartDate = DateOnly(p.StartDate)
	p.EndDate = end
	return p, nil
}

// InstallmentSchedule перечисляет все платежи плана. Каждая дата считается
// от даты начала, поэтому короткий месяц не сдвигает следующие.
func InstallmentSchedule(start time.Time, count int, perInstallment decimal.Decimal) (*InstallmentSummary, error) {
	plan, err := DerivePlan(Installment{Count: count, PerInstallmentAmount: perInstallment, StartDate: start})
	if err != nil {
		return nil, err
	}

	schedule := make([]ScheduleEntry, 0, count)
	cumulative := decimal.Zero
	for n := 1; n <= count; n++ {
		cumulative = cumulative.Add(perInstallment)
		schedule = append(schedule, ScheduleEntry{
			Number:           n,
			DueDate:          AddMonthsClamped(plan.StartDate, n-1),
			Amount:           utils.Round2(perInstallment),
			CumulativeAmount: utils.Round2(cumulative),
		})
	}

	return &InstallmentSummary{
		Plan:        plan,
		TotalAmount: utils.Round2(cumulative),
		Schedule:    schedule,
	}, nil
}
