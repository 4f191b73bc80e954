package calculations

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/erp-finance-summary/pkg/utils"
)

// Границы десятичного порядка. Вне [minParsedExponent; maxExponent] значение отвергается
// до любых сравнений: масштабирование decimal строит big.Int размером с порядок.
// Лишние знаки после запятой (шум float) округляются до -minExponent.
const (
	minParsedExponent = -32
	minExponent       = -8
	maxExponent       = 15
)

var (
	ErrNotNumeric     = errors.New("value is not a number")
	ErrNotFinite      = errors.New("value is not a finite number")
	ErrNegativeAmount = errors.New("value must not be negative")
)

// ParseAmount разбирает денежное значение, пришедшее из JSON.
// Отсутствующее значение (nil или пустая строка) даёт ноль с present=false без ошибки.
// Мусор и отрицательная сумма считаются ошибкой.
func ParseAmount(raw any) (amount decimal.Decimal, present bool, err error) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, false, nil
	case decimal.Decimal:
		amount = v
	case float64:
		if !utils.IsFinite(v) {
			return decimal.Zero, true, ErrNotFinite
		}
		amount = decimal.NewFromFloat(v)
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int64:
		amount = decimal.NewFromInt(v)
	case json.Number:
		amount, err = decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, true, ErrNotNumeric
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, false, nil
		}
		amount, err = decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, true, ErrNotNumeric
		}
	default:
		return decimal.Zero, true, fmt.Errorf("%w: unsupported type %T", ErrNotNumeric, raw)
	}
	exp := amount.Exponent()
	if exp < minParsedExponent || exp > maxExponent {
		return decimal.Zero, true, fmt.Errorf("%w: exponent %d out of range", ErrNotNumeric, exp)
	}
	if exp < minExponent {
		amount = amount.Round(-minExponent)
	}
	if amount.IsNegative() {
		return amount, true, ErrNegativeAmount
	}
	return amount, true, nil
}
