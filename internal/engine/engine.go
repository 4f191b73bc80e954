// Package engine проверяет запись и пересчитывает её финансовые поля.
package engine

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/erp-finance-summary/internal/calculations"
	"github.com/cloud-ru/erp-finance-summary/internal/entities"
	"github.com/cloud-ru/erp-finance-summary/internal/validators"
	"github.com/cloud-ru/erp-finance-summary/pkg/utils"
)

// Result содержит итог пересчёта записи. Record всегда несёт свежие вычисленные
// значения, даже при непустом Errors, чтобы форма могла их показывать.
type Result struct {
	Record   map[string]any
	Summary  *calculations.RecordSummary
	Errors   validators.Errors
	Warnings validators.Errors
}

// OK сообщает, прошла ли запись проверку
func (r Result) OK() bool {
	return r.Errors.OK()
}

// Summarize проверяет payload по профилю и пересчитывает все вычисляемые поля.
// Присланные клиентом вычисляемые значения отбрасываются, payload не меняется.
func Summarize(p entities.Profile, payload map[string]any, limits validators.Limits) Result {
	record := make(map[string]any, len(payload)+len(p.Derived()))
	for k, v := range payload {
		record[k] = v
	}
	for _, f := range p.Derived() {
		delete(record, f)
	}

	fields := validators.NewFields(limits)
	warnings := validators.Errors{}

	for _, f := range p.Required {
		fields.Required(f, record[f])
	}

	dates := make(map[string]time.Time)
	for _, rule := range p.Dates {
		if d, ok := fields.Date(rule.Field, record[rule.Field], rule.Required); ok {
			dates[rule.Field] = d
			record[rule.Field] = d.Format(validators.DateLayout)
		}
	}

	amounts := make(map[string]decimal.Decimal)
	for _, rule := range p.Amounts {
		amounts[rule.Field], _ = fields.Amount(rule.Field, record[rule.Field], rule.Required, rule.Positive)
	}

	components := make([]calculations.CostComponent, 0, len(p.Components))
	for _, f := range p.Components {
		amount, _ := fields.Amount(f, record[f], false, false)
		amounts[f] = amount
		components = append(components, calculations.CostComponent{Name: f, Amount: amount})
	}

	var paid decimal.Decimal
	if p.PaidField != "" {
		paid, _ = fields.Amount(p.PaidField, record[p.PaidField], p.PaidPositive, p.PaidPositive)
	}

	var plan calculations.PaymentPlan
	if p.Plan != nil {
		plan = resolvePlan(p.Plan, record, dates, fields)
	}

	mr := calculations.MonetaryRecord{Components: components, Paid: paid, Plan: plan}
	if p.Profit != nil {
		pricing := calculations.Pricing{SellingPrice: amounts[p.Profit.SellingField]}
		if p.Profit.CostingField != "" {
			pricing.CostingPrice = amounts[p.Profit.CostingField]
		}
		mr.Pricing = &pricing
	}

	summary, err := mr.Summarize()
	if err != nil {
		// resolvePlan строит рассрочку только с корректным числом платежей
		fields.Errors.Add(p.Plan.CountField, err.Error())
		mr.Plan = nil
		summary, _ = mr.Summarize()
	}

	if p.HasBill() {
		record[p.TotalField] = number(summary.Bill.Total)
		if p.DueField != "" {
			record[p.DueField] = number(summary.Bill.Due)
		}
		if p.OverpaidField != "" {
			record[p.OverpaidField] = number(summary.Bill.Overpaid)
		}
		if p.PaidField != "" && summary.Bill.Paid.GreaterThan(summary.Bill.Total) {
			warnings.Add(p.PaidField, validators.Label(p.PaidField)+" exceeds "+validators.Label(p.TotalField))
		}
	}
	if pl := summary.ProfitLoss; pl != nil {
		record[p.Profit.AmountField] = number(pl.Amount)
		record[p.Profit.PercentageField] = number(pl.Percentage)
		record[p.Profit.StatusField] = string(pl.Status)
	}

	return Result{Record: record, Summary: summary, Errors: fields.Errors, Warnings: warnings}
}

// resolvePlan читает вариант плана. Дата окончания рассрочки записывается, как только
// корректны число платежей и дата начала, независимо от остальных полей.
func resolvePlan(pf *entities.PlanFields, record map[string]any, dates map[string]time.Time, fields *validators.Fields) calculations.PaymentPlan {
	kind := fields.OneOf(pf.TypeField, record[pf.TypeField], pf.DefaultType,
		calculations.PlanOneTime, calculations.PlanInstallment)
	if kind != "" {
		record[pf.TypeField] = kind
	}

	switch kind {
	case calculations.PlanInstallment:
		count, countOK := fields.Count(pf.CountField, record[pf.CountField])
		per, perOK := fields.Amount(pf.PerInstallmentField, record[pf.PerInstallmentField], true, true)
		start, startOK := fields.Date(pf.StartField, record[pf.StartField], true)
		if startOK {
			record[pf.StartField] = start.Format(validators.DateLayout)
		}
		if !countOK || !startOK {
			return nil
		}
		if end, err := calculations.InstallmentEndDate(start, count); err == nil {
			record[pf.EndField] = end.Format(validators.DateLayout)
		}
		if !perOK {
			return nil
		}
		return calculations.Installment{Count: count, PerInstallmentAmount: per, StartDate: start}
	case calculations.PlanOneTime:
		if pf.OneTimeDateField == "" {
			return calculations.OneTime{}
		}
		d, ok := dates[pf.OneTimeDateField]
		if !ok {
			if d, ok = fields.Date(pf.OneTimeDateField, record[pf.OneTimeDateField], false); ok {
				record[pf.OneTimeDateField] = d.Format(validators.DateLayout)
			}
		}
		return calculations.OneTime{PaymentDate: d}
	}
	return nil
}

func number(d decimal.Decimal) json.Number {
	return json.Number(utils.Fixed2(d))
}
