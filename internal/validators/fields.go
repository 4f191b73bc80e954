package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/erp-finance-summary/internal/calculations"
)

// DateLayout формат дат в JSON
const DateLayout = "2006-01-02"

var validate = validator.New()

// Fields проверяет отдельные поля записи из JSON и собирает сообщения
// в Errors, не останавливаясь на первой ошибке.
type Fields struct {
	Limits Limits
	Errors Errors
}

// NewFields создаёт Fields с пустой картой ошибок
func NewFields(l Limits) *Fields {
	return &Fields{Limits: l, Errors: Errors{}}
}

// Required проверяет, что текстовое поле заполнено
func (f *Fields) Required(field string, raw any) string {
	text := strings.TrimSpace(asText(raw))
	if err := validate.Var(text, "required"); err != nil {
		f.Errors.Add(field, Label(field)+" is required")
	}
	return text
}

// OneOf проверяет значение по списку допустимых; пустое даёт fallback
func (f *Fields) OneOf(field string, raw any, fallback string, allowed ...string) string {
	text := strings.TrimSpace(asText(raw))
	if text == "" {
		return fallback
	}
	if err := validate.Var(text, "oneof="+strings.Join(allowed, " ")); err != nil {
		f.Errors.Add(field, fmt.Sprintf("%s must be one of: %s", Label(field), strings.Join(allowed, ", ")))
	}
	return text
}

// Date разбирает дату. Метки RFC 3339 принимаются и обрезаются до даты.
func (f *Fields) Date(field string, raw any, required bool) (time.Time, bool) {
	text := strings.TrimSpace(asText(raw))
	if text == "" {
		if required {
			f.Errors.Add(field, Label(field)+" is required")
		}
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, text); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return calculations.DateOnly(t), true
	}
	f.Errors.Add(field, Label(field)+" must be a date (YYYY-MM-DD)")
	return time.Time{}, false
}

// Amount разбирает денежное поле. Отсутствующее значение равно нулю, если поле необязательно.
// Явно некорректный ввод всегда попадает в ошибки и даёт ноль.
func (f *Fields) Amount(field string, raw any, required, positive bool) (decimal.Decimal, bool) {
	amount, present, err := calculations.ParseAmount(raw)
	switch {
	case errors.Is(err, calculations.ErrNegativeAmount):
		f.Errors.Add(field, Label(field)+" must not be negative")
		return decimal.Zero, false
	case err != nil:
		f.Errors.Add(field, Label(field)+" must be a number")
		return decimal.Zero, false
	case !present:
		if required || positive {
			f.Errors.Add(field, Label(field)+" is required")
			return decimal.Zero, false
		}
		return decimal.Zero, true
	}
	check := CheckAmount
	if positive {
		check = CheckPositiveAmount
	}
	if err := check(f.Limits, field, amount); err != nil {
		if errors.Is(err, ErrAboveMaximum) {
			f.Errors.Add(field, fmt.Sprintf("%s must not exceed %s", Label(field), f.Limits.MaxAmount.String()))
		} else {
			f.Errors.Add(field, Label(field)+" must be greater than 0")
		}
		return amount, false
	}
	return amount, true
}

// Count разбирает число платежей: обязательное целое в пределах лимитов
func (f *Fields) Count(field string, raw any) (int, bool) {
	n, present, err := parseCount(raw)
	switch {
	case !present:
		f.Errors.Add(field, Label(field)+" is required")
		return 0, false
	case err != nil:
		f.Errors.Add(field, Label(field)+" must be a whole number")
		return 0, false
	}
	if err := CheckInstallmentCount(f.Limits, field, n); err != nil {
		if errors.Is(err, ErrAboveMaximum) {
			f.Errors.Add(field, fmt.Sprintf("%s must not exceed %d", Label(field), f.Limits.MaxInstallments))
		} else {
			f.Errors.Add(field, Label(field)+" must be at least 1")
		}
		return n, false
	}
	return n, true
}

// parseCount читает количество платежей. Значения за пределами int32 прижимаются
// к границе, чтобы проверка диапазона дала осмысленное сообщение.
func parseCount(raw any) (int, bool, error) {
	switch v := raw.(type) {
	case nil:
		return 0, false, nil
	case int:
		return clampCount(int64(v)), true, nil
	case int64:
		return clampCount(v), true, nil
	case float64:
		switch {
		case math.IsNaN(v):
			return 0, true, errors.New("not a number")
		case v > math.MaxInt32:
			return math.MaxInt32, true, nil
		case v < math.MinInt32:
			return math.MinInt32, true, nil
		case v != math.Trunc(v):
			return 0, true, errors.New("not a whole number")
		}
		return int(v), true, nil
	case json.Number:
		if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
			return clampCount(n), true, nil
		}
		f, err := v.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, true, err
		}
		return parseCount(f)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, true, err
		}
		return clampCount(n), true, nil
	default:
		return 0, true, fmt.Errorf("unsupported type %T", raw)
	}
}

func clampCount(n int64) int {
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return math.MinInt32
	}
	return int(n)
}

func asText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Label превращает camelCase имя поля в подпись ("vendorBill" -> "Vendor bill")
func Label(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
