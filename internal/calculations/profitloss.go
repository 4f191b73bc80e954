package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/erp-finance-summary/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// Classify относит сумму со знаком к прибыли, убытку или нулю
func Classify(amount decimal.Decimal) ProfitStatus {
	switch amount.Sign() {
	case 1:
		return StatusProfit
	case -1:
		return StatusLoss
	default:
		return StatusNeutral
	}
}

// CalculateProfitLoss сравнивает себестоимость и цену продажи. Процент считается
// от цены продажи и равен нулю при нулевой цене.
func CalculateProfitLoss(costing, selling decimal.Decimal) ProfitLoss {
	amount := utils.Round2(selling.Sub(costing))

	percentage := decimal.Zero
	if !selling.IsZero() {
		percentage = utils.Round2(selling.Sub(costing).Div(selling).Mul(hundred))
	}

	return ProfitLoss{
		CostingPrice: utils.Round2(costing),
		SellingPrice: utils.Round2(selling),
		Amount:       amount,
		Percentage:   percentage,
		Status:       Classify(amount),
	}
}

// ServiceChargeProfit обрабатывает записи, где цена продажи является сервисным сбором
// без себестоимости: весь сбор считается прибылью.
func ServiceChargeProfit(serviceCharge decimal.Decimal) ProfitLoss {
	return CalculateProfitLoss(decimal.Zero, serviceCharge)
}
