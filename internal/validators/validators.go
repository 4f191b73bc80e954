package validators

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/erp-finance-summary/internal/config"
)

// Ошибки выхода за диапазон; по ним Fields выбирает текст сообщения
var (
	ErrBelowMinimum = errors.New("value below minimum")
	ErrAboveMaximum = errors.New("value above maximum")
)

// Limits ограничивают вводимые пользователем значения
type Limits struct {
	MaxAmount       decimal.Decimal
	MaxInstallments int
}

// DefaultLimits используются, когда конфигурации нет
func DefaultLimits() Limits {
	return Limits{MaxAmount: decimal.New(1, 12), MaxInstallments: 600}
}

// LimitsFrom берет лимиты из конфигурации сервиса
func LimitsFrom(cfg *config.Config) Limits {
	if cfg == nil {
		return DefaultLimits()
	}
	return Limits{
		MaxAmount:       decimal.NewFromFloat(cfg.MaxAmount),
		MaxInstallments: cfg.MaxInstallments,
	}
}

// ValidateAmount проверяет, что сумма лежит в [min; max]
func ValidateAmount(name string, value, minInclusive, maxInclusive decimal.Decimal) error {
	if value.LessThan(minInclusive) {
		return fmt.Errorf("%s: value must be ≥ %s: %w", name, minInclusive.String(), ErrBelowMinimum)
	}
	if value.GreaterThan(maxInclusive) {
		return fmt.Errorf("%s: value is too large (>%s): %w", name, maxInclusive.String(), ErrAboveMaximum)
	}
	return nil
}

// ValidateIntRange проверяет, что целое лежит в [min; max]
func ValidateIntRange(name string, value int, minInclusive, maxInclusive int) error {
	if value < minInclusive {
		return fmt.Errorf("%s: value must be in range [%d; %d]: %w", name, minInclusive, maxInclusive, ErrBelowMinimum)
	}
	if value > maxInclusive {
		return fmt.Errorf("%s: value must be in range [%d; %d]: %w", name, minInclusive, maxInclusive, ErrAboveMaximum)
	}
	return nil
}

// CheckAmount проверяет неотрицательную денежную сумму
func CheckAmount(l Limits, name string, amount decimal.Decimal) error {
	return ValidateAmount(name, amount, decimal.Zero, l.MaxAmount)
}

// CheckPositiveAmount проверяет строго положительную денежную сумму
func CheckPositiveAmount(l Limits, name string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%s: value must be greater than 0: %w", name, ErrBelowMinimum)
	}
	return CheckAmount(l, name, amount)
}

// CheckInstallmentCount проверяет количество платежей
func CheckInstallmentCount(l Limits, name string, count int) error {
	return ValidateIntRange(name, count, 1, l.MaxInstallments)
}
