package entities

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AmountRule описывает отдельное денежное поле
type AmountRule struct {
	Field    string `validate:"required"`
	Required bool
	Positive bool
}

// DateRule описывает поле с датой
type DateRule struct {
	Field    string `validate:"required"`
	Required bool
}

// PlanFields связывает план оплаты с полями записи.
// Пустой DefaultType делает план необязательным.
type PlanFields struct {
	TypeField           string `validate:"required"`
	DefaultType         string `validate:"omitempty,oneof=one-time installment"`
	CountField          string `validate:"required"`
	PerInstallmentField string `validate:"required"`
	StartField          string `validate:"required"`
	EndField            string `validate:"required"`
	OneTimeDateField    string
}

// ProfitFields связывает расчёт прибыли с полями записи.
// Пустой CostingField означает сервисный сбор, который целиком идёт в прибыль.
type ProfitFields struct {
	CostingField    string
	SellingField    string `validate:"required"`
	AmountField     string `validate:"required"`
	PercentageField string `validate:"required"`
	StatusField     string `validate:"required"`
}

// Profile описывает, как ресурс заполняет денежную запись
type Profile struct {
	Resource string `validate:"required"`
	Envelope string `validate:"required"`
	Module   string `validate:"required"`

	Required []string
	Dates    []DateRule   `validate:"dive"`
	Amounts  []AmountRule `validate:"dive"`

	Components    []string
	TotalField    string `validate:"required_with=Components"`
	PaidField     string
	PaidPositive  bool
	DueField      string `validate:"required_with_all=PaidField TotalField"`
	OverpaidField string

	Plan   *PlanFields
	Profit *ProfitFields
}

// Derived перечисляет поля, которые считает сервер; значения клиента отбрасываются
func (p Profile) Derived() []string {
	var out []string
	if p.TotalField != "" {
		out = append(out, p.TotalField)
	}
	if p.DueField != "" {
		out = append(out, p.DueField)
	}
	if p.OverpaidField != "" {
		out = append(out, p.OverpaidField)
	}
	if p.Plan != nil {
		out = append(out, p.Plan.EndField)
	}
	if p.Profit != nil {
		out = append(out, p.Profit.AmountField, p.Profit.PercentageField, p.Profit.StatusField)
	}
	return out
}

// HasBill сообщает, есть ли у записи итог по составляющим
func (p Profile) HasBill() bool {
	return len(p.Components) > 0
}

// Validate проверяет согласованность профиля
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("profile %q: %w", p.Resource, err)
	}
	if p.Profit != nil && p.Profit.CostingField == "" && !p.isInput(p.Profit.SellingField) {
		return fmt.Errorf("profile %q: service charge field %q is not an input", p.Resource, p.Profit.SellingField)
	}
	derived := make(map[string]struct{})
	for _, f := range p.Derived() {
		if _, dup := derived[f]; dup {
			return fmt.Errorf("profile %q: derived field %q declared twice", p.Resource, f)
		}
		derived[f] = struct{}{}
	}
	for _, f := range p.inputs() {
		if _, clash := derived[f]; clash {
			return fmt.Errorf("profile %q: field %q is both input and derived", p.Resource, f)
		}
	}
	return nil
}

func (p Profile) inputs() []string {
	out := append([]string{}, p.Required...)
	for _, d := range p.Dates {
		out = append(out, d.Field)
	}
	for _, a := range p.Amounts {
		out = append(out, a.Field)
	}
	out = append(out, p.Components...)
	if p.PaidField != "" {
		out = append(out, p.PaidField)
	}
	if p.Plan != nil {
		out = append(out, p.Plan.TypeField, p.Plan.CountField, p.Plan.PerInstallmentField, p.Plan.StartField)
	}
	return out
}

func (p Profile) isInput(field string) bool {
	for _, f := range p.inputs() {
		if f == field {
			return true
		}
	}
	return false
}
