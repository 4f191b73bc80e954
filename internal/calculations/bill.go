package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/erp-finance-summary/pkg/utils"
)

// TotalAmount суммирует компоненты и округляет один раз в конце
func TotalAmount(components []CostComponent) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range components {
		sum = sum.Add(c.Amount)
	}
	return utils.Round2(sum)
}

// DueAmount возвращает остаток к оплате, не меньше нуля
func DueAmount(total, paid decimal.Decimal) decimal.Decimal {
	due := utils.Round2(total.Sub(paid))
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// OverpaidAmount возвращает переплату сверх итога, не меньше нуля
func OverpaidAmount(total, paid decimal.Decimal) decimal.Decimal {
	over := utils.Round2(paid.Sub(total))
	if over.IsNegative() {
		return decimal.Zero
	}
	return over
}

// AggregateBill считает итог, остаток и переплату по компонентам и оплаченной сумме
func AggregateBill(components []CostComponent, paid decimal.Decimal) BillSummary {
	total := TotalAmount(components)
	copied := make([]CostComponent, len(components))
	copy(copied, components)
	return BillSummary{
		Components: copied,
		Total:      total,
		Paid:       utils.Round2(paid),
		Due:        DueAmount(total, paid),
		Overpaid:   OverpaidAmount(total, paid),
	}
}
