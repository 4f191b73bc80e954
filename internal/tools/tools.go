package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/erp-finance-summary/internal/calculations"
	"github.com/cloud-ru/erp-finance-summary/internal/engine"
	"github.com/cloud-ru/erp-finance-summary/internal/entities"
	"github.com/cloud-ru/erp-finance-summary/internal/metrics"
	"github.com/cloud-ru/erp-finance-summary/internal/validators"
	"github.com/cloud-ru/erp-finance-summary/pkg/utils"
)

// Имена инструментов
const (
	BillSummary         = "bill_summary"
	InstallmentSchedule = "installment_schedule"
	ProfitLoss          = "profit_loss"
	RecordSummary       = "record_summary"
)

// ToolHandler выполняет инструмент расчёта над параметрами из JSON
type ToolHandler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// ValidationError содержит сообщения по параметрам
type ValidationError struct {
	Errors   validators.Errors
	Warnings validators.Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors.Fields() {
		parts = append(parts, f+": "+e.Errors[f])
	}
	return "invalid parameters: " + strings.Join(parts, "; ")
}

// Registry сопоставляет имена инструментов обработчикам
type Registry map[string]ToolHandler

// NewRegistry создаёт все инструменты с заданными лимитами и трейсером
func NewRegistry(limits validators.Limits, tracer trace.Tracer) Registry {
	return Registry{
		BillSummary:         BillSummaryHandler(limits, tracer),
		InstallmentSchedule: InstallmentScheduleHandler(limits, tracer),
		ProfitLoss:          ProfitLossHandler(limits, tracer),
		RecordSummary:       RecordSummaryHandler(limits, tracer),
	}
}

// Names возвращает имена инструментов по порядку
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ComponentAmount представляет одну именованную сумму счёта
type ComponentAmount struct {
	Name   string      `json:"name"`
	Amount json.Number `json:"amount"`
}

// BillResult представляет результат bill_summary
type BillResult struct {
	Components     []ComponentAmount `json:"components"`
	TotalAmount    json.Number       `json:"total_amount"`
	PaidAmount     json.Number       `json:"paid_amount"`
	DueAmount      json.Number       `json:"due_amount"`
	OverpaidAmount json.Number       `json:"overpaid_amount"`
	Display        map[string]string `json:"display"`
	Warnings       map[string]string `json:"warnings,omitempty"`
}

// ScheduleItem представляет один платёж графика
type ScheduleItem struct {
	Number           int         `json:"number"`
	DueDate          string      `json:"due_date"`
	Amount           json.Number `json:"amount"`
	CumulativeAmount json.Number `json:"cumulative_amount"`
}

// ScheduleResult представляет результат installment_schedule
type ScheduleResult struct {
	StartDate            string         `json:"start_date"`
	EndDate              string         `json:"end_date"`
	NumberOfInstallments int            `json:"number_of_installments"`
	PerInstallmentAmount json.Number    `json:"per_installment_amount"`
	TotalAmount          json.Number    `json:"total_amount"`
	Schedule             []ScheduleItem `json:"schedule"`
}

// ProfitLossResult представляет результат profit_loss
type ProfitLossResult struct {
	CostingPrice json.Number `json:"costing_price"`
	SellingPrice json.Number `json:"selling_price"`
	Amount       json.Number `json:"amount"`
	Percentage   json.Number `json:"percentage"`
	Status       string      `json:"status"`
}

// RecordResult представляет результат record_summary
type RecordResult struct {
	Resource   string            `json:"resource"`
	Record     map[string]any    `json:"record"`
	ProfitLoss *ProfitLossResult `json:"profit_loss,omitempty"`
	Schedule   []ScheduleItem    `json:"schedule,omitempty"`
	Warnings   map[string]string `json:"warnings,omitempty"`
}

// BillSummaryHandler суммирует составляющие и сверяет оплаченную сумму
func BillSummaryHandler(limits validators.Limits, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := BillSummary

		_, span := tracer.Start(ctx, toolName)
		defer span.End()

		metrics.APICalls.WithLabelValues("tools", toolName, "started").Inc()

		fields := validators.NewFields(limits)
		components, err := readComponents(fields, params["components"])
		if err != nil {
			return nil, reject(span, toolName, err)
		}
		paid, _ := fields.Amount("paid_amount", params["paid_amount"], false, false)
		if !fields.Errors.OK() {
			return nil, reject(span, toolName, &ValidationError{Errors: fields.Errors})
		}

		bill := calculations.AggregateBill(components, paid)
		result := &BillResult{
			Components:     make([]ComponentAmount, 0, len(bill.Components)),
			TotalAmount:    money(bill.Total),
			PaidAmount:     money(bill.Paid),
			DueAmount:      money(bill.Due),
			OverpaidAmount: money(bill.Overpaid),
			Display: map[string]string{
				"total_amount": utils.Display(bill.Total),
				"paid_amount":  utils.Display(bill.Paid),
				"due_amount":   utils.Display(bill.Due),
			},
		}
		for _, c := range bill.Components {
			result.Components = append(result.Components, ComponentAmount{Name: c.Name, Amount: money(c.Amount)})
		}
		if bill.Overpaid.IsPositive() {
			result.Warnings = map[string]string{"paid_amount": "Paid amount exceeds Total amount"}
		}

		span.SetAttributes(
			attribute.Int("components", len(components)),
			attribute.String("total_amount", bill.Total.String()),
			attribute.String("due_amount", bill.Due.String()),
		)
		succeed(span, toolName)
		return result, nil
	}
}

// InstallmentScheduleHandler рассчитывает даты ежемесячных платежей рассрочки
func InstallmentScheduleHandler(limits validators.Limits, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := InstallmentSchedule

		_, span := tracer.Start(ctx, toolName)
		defer span.End()

		metrics.APICalls.WithLabelValues("tools", toolName, "started").Inc()

		fields := validators.NewFields(limits)
		start, _ := fields.Date("start_date", params["start_date"], true)
		count, _ := fields.Count("number_of_installments", params["number_of_installments"])
		per, _ := fields.Amount("per_installment_amount", params["per_installment_amount"], false, false)
		if !fields.Errors.OK() {
			return nil, reject(span, toolName, &ValidationError{Errors: fields.Errors})
		}

		span.SetAttributes(
			attribute.String("start_date", start.Format(validators.DateLayout)),
			attribute.Int("number_of_installments", count),
		)

		summary, err := calculations.InstallmentSchedule(start, count, per)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "calculation_error")
			metrics.ToolCalls.WithLabelValues(toolName, "error").Inc()
			metrics.CalculationErrors.WithLabelValues(toolName, "calculation").Inc()
			metrics.APICalls.WithLabelValues("tools", toolName, "error").Inc()
			return nil, fmt.Errorf("calculation failed: %w", err)
		}

		plan := summary.Plan
		result := &ScheduleResult{
			StartDate:            plan.StartDate.Format(validators.DateLayout),
			EndDate:              plan.EndDate.Format(validators.DateLayout),
			NumberOfInstallments: plan.Count,
			PerInstallmentAmount: money(per),
			TotalAmount:          money(summary.TotalAmount),
			Schedule:             scheduleItems(summary.Schedule),
		}

		span.SetAttributes(attribute.String("end_date", result.EndDate))
		succeed(span, toolName)
		return result, nil
	}
}

// ProfitLossHandler сравнивает себестоимость с ценой продажи.
// Без себестоимости цена продажи считается сервисным сбором и целиком прибылью.
func ProfitLossHandler(limits validators.Limits, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := ProfitLoss

		_, span := tracer.Start(ctx, toolName)
		defer span.End()

		metrics.APICalls.WithLabelValues("tools", toolName, "started").Inc()

		fields := validators.NewFields(limits)
		selling, _ := fields.Amount("selling_price", params["selling_price"], true, false)
		costing, _ := fields.Amount("costing_price", params["costing_price"], false, false)
		if !fields.Errors.OK() {
			return nil, reject(span, toolName, &ValidationError{Errors: fields.Errors})
		}

		var pl calculations.ProfitLoss
		if _, given := params["costing_price"]; given {
			pl = calculations.CalculateProfitLoss(costing, selling)
		} else {
			pl = calculations.ServiceChargeProfit(selling)
		}

		span.SetAttributes(
			attribute.String("amount", pl.Amount.String()),
			attribute.String("status", string(pl.Status)),
		)
		succeed(span, toolName)
		return profitLossResult(pl), nil
	}
}

// RecordSummaryHandler проверяет запись ресурса и пересчитывает вычисляемые поля
func RecordSummaryHandler(limits validators.Limits, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := RecordSummary

		_, span := tracer.Start(ctx, toolName)
		defer span.End()

		metrics.APICalls.WithLabelValues("tools", toolName, "started").Inc()

		resource, _ := params["resource"].(string)
		profile, ok := entities.Lookup(resource)
		if !ok {
			return nil, reject(span, toolName, &ValidationError{
				Errors: validators.Errors{"resource": fmt.Sprintf("unknown resource %q", resource)},
			})
		}
		record, ok := params["record"].(map[string]interface{})
		if !ok {
			return nil, reject(span, toolName, &ValidationError{
				Errors: validators.Errors{"record": "Record must be an object"},
			})
		}

		span.SetAttributes(attribute.String("resource", resource))

		res := engine.Summarize(profile, record, limits)
		if !res.OK() {
			for _, f := range res.Errors.Fields() {
				metrics.ValidationFailures.WithLabelValues(resource, f).Inc()
			}
			return nil, reject(span, toolName, &ValidationError{Errors: res.Errors, Warnings: res.Warnings})
		}

		result := &RecordResult{
			Resource: resource,
			Record:   res.Record,
			Schedule: scheduleItems(res.Summary.Schedule),
		}
		if pl := res.Summary.ProfitLoss; pl != nil {
			result.ProfitLoss = profitLossResult(*pl)
		}
		if !res.Warnings.OK() {
			result.Warnings = res.Warnings
		}

		succeed(span, toolName)
		return result, nil
	}
}

// readComponents принимает {"name": amount, ...} (по имени)
// или [{"name": ..., "amount": ...}, ...] (порядок сохраняется)
func readComponents(fields *validators.Fields, raw interface{}) ([]calculations.CostComponent, error) {
	var out []calculations.CostComponent
	switch v := raw.(type) {
	case nil:
		return nil, &ValidationError{Errors: validators.Errors{"components": "Components is required"}}
	case map[string]interface{}:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			amount, _ := fields.Amount(name, v[name], false, false)
			out = append(out, calculations.CostComponent{Name: name, Amount: amount})
		}
	case []interface{}:
		for i, item := range v {
			obj, ok := item.(map[string]interface{})
			name, _ := obj["name"].(string)
			if !ok || name == "" {
				fields.Errors.Add(fmt.Sprintf("components[%d]", i), "Component must have a name and an amount")
				continue
			}
			amount, _ := fields.Amount(name, obj["amount"], false, false)
			out = append(out, calculations.CostComponent{Name: name, Amount: amount})
		}
	default:
		return nil, &ValidationError{Errors: validators.Errors{"components": "Components must be an object or a list"}}
	}
	return out, nil
}

func reject(span trace.Span, toolName string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "validation_error")
	metrics.ToolCalls.WithLabelValues(toolName, "validation_error").Inc()
	metrics.CalculationErrors.WithLabelValues(toolName, "validation").Inc()
	metrics.APICalls.WithLabelValues("tools", toolName, "error").Inc()
	return err
}

func succeed(span trace.Span, toolName string) {
	span.SetAttributes(attribute.Bool("success", true))
	metrics.ToolCalls.WithLabelValues(toolName, "success").Inc()
	metrics.APICalls.WithLabelValues("tools", toolName, "success").Inc()
}

func scheduleItems(entries []calculations.ScheduleEntry) []ScheduleItem {
	if len(entries) == 0 {
		return nil
	}
	items := make([]ScheduleItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, ScheduleItem{
			Number:           e.Number,
			DueDate:          e.DueDate.Format(validators.DateLayout),
			Amount:           money(e.Amount),
			CumulativeAmount: money(e.CumulativeAmount),
		})
	}
	return items
}

func profitLossResult(pl calculations.ProfitLoss) *ProfitLossResult {
	return &ProfitLossResult{
		CostingPrice: money(pl.CostingPrice),
		SellingPrice: money(pl.SellingPrice),
		Amount:       money(pl.Amount),
		Percentage:   money(pl.Percentage),
		Status:       string(pl.Status),
	}
}

func money(d decimal.Decimal) json.Number {
	return json.Number(utils.Fixed2(d))
}
