package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloud-ru/erp-finance-summary/internal/calculations"
	"github.com/cloud-ru/erp-finance-summary/internal/entities"
	"github.com/cloud-ru/erp-finance-summary/internal/validators"
)

func profile(t *testing.T, resource string) entities.Profile {
	t.Helper()
	p, ok := entities.Lookup(resource)
	require.True(t, ok, resource)
	return p
}

func TestSummarizeAssetInstallment(t *testing.T) {
	payload := map[string]any{
		"name":                 "Office laptop",
		"type":                 "Electronics",
		"purchaseDate":         "2024-01-10",
		"totalPaidAmount":      85000.0,
		"paymentType":          "installment",
		"numberOfInstallments": 12.0,
		"perInstallmentAmount": "7083.33",
		"installmentStartDate": "2024-01-15",
		"installmentEndDate":   "1999-01-01",
	}

	res := Summarize(profile(t, "assets"), payload, validators.DefaultLimits())

	assert.True(t, res.OK(), res.Errors)
	assert.Equal(t, "2024-12-15", res.Record["installmentEndDate"])
	assert.Equal(t, "1999-01-01", payload["installmentEndDate"], "payload must not be modified")

	plan, ok := res.Summary.Plan.(calculations.Installment)
	require.True(t, ok)
	assert.Equal(t, 12, plan.Count)
	require.Len(t, res.Summary.Schedule, 12)
	assert.Equal(t, "2024-12-15", res.Summary.Schedule[11].DueDate.Format(validators.DateLayout))
}

func TestSummarizeAssetEndDateWithoutPerInstallment(t *testing.T) {
	payload := map[string]any{
		"name":                 "Generator",
		"type":                 "Equipment",
		"purchaseDate":         "2024-01-15",
		"totalPaidAmount":      85000.0,
		"paymentType":          "installment",
		"numberOfInstallments": 12.0,
		"installmentStartDate": "2024-01-15",
	}

	res := Summarize(profile(t, "assets"), payload, validators.DefaultLimits())

	assert.Equal(t, "2024-12-15", res.Record["installmentEndDate"])
	assert.Equal(t, []string{"perInstallmentAmount"}, res.Errors.Fields())
	assert.Nil(t, res.Summary.Plan)
}

func TestSummarizeAssetRequiredFields(t *testing.T) {
	res := Summarize(profile(t, "assets"), map[string]any{
		"paymentType":          "installment",
		"numberOfInstallments": 0.0,
	}, validators.DefaultLimits())

	assert.Equal(t, []string{
		"installmentStartDate",
		"name",
		"numberOfInstallments",
		"perInstallmentAmount",
		"purchaseDate",
		"totalPaidAmount",
		"type",
	}, res.Errors.Fields())
	_, hasEnd := res.Record["installmentEndDate"]
	assert.False(t, hasEnd)
}

func TestSummarizeAssetOneTimeDefault(t *testing.T) {
	res := Summarize(profile(t, "assets"), map[string]any{
		"name":            "Desk",
		"type":            "Furniture",
		"purchaseDate":    "2024-03-31T10:00:00Z",
		"totalPaidAmount": "12000",
	}, validators.DefaultLimits())

	require.True(t, res.OK(), res.Errors)
	assert.Equal(t, calculations.PlanOneTime, res.Record["paymentType"])
	assert.Equal(t, "2024-03-31", res.Record["purchaseDate"])
	plan, ok := res.Summary.Plan.(calculations.OneTime)
	require.True(t, ok)
	assert.Equal(t, 31, plan.PaymentDate.Day())
}

func TestSummarizeManpowerBill(t *testing.T) {
	payload := map[string]any{
		"name":          "Rahim",
		"vendorName":    "Global Staffing",
		"vendorBill":    5000.0,
		"othersBill":    1200.0,
		"serviceCharge": 800.0,
		"paidAmount":    4000.0,
		"totalBill":     1.0,
		"dueAmount":     -5.0,
	}

	res := Summarize(profile(t, "manpower-services"), payload, validators.DefaultLimits())

	assert.True(t, res.OK(), res.Errors)
	assert.Equal(t, json.Number("7000.00"), res.Record["totalBill"])
	assert.Equal(t, json.Number("3000.00"), res.Record["dueAmount"])
	assert.Equal(t, json.Number("0.00"), res.Record["overpaidAmount"])
	assert.True(t, res.Warnings.OK())
}

func TestSummarizeOverpaymentIsWarning(t *testing.T) {
	res := Summarize(profile(t, "passport-services"), map[string]any{
		"name":           "Karim",
		"passportNumber": "A1234567",
		"passportFee":    "4025",
		"bankCharge":     "150.50",
		"paidAmount":     "5000",
	}, validators.DefaultLimits())

	assert.True(t, res.OK(), res.Errors)
	assert.Equal(t, json.Number("4175.50"), res.Record["totalAmount"])
	assert.Equal(t, json.Number("0.00"), res.Record["dueAmount"])
	assert.Equal(t, json.Number("824.50"), res.Record["overpaidAmount"])
	assert.Equal(t, "Paid amount exceeds Total amount", res.Warnings["paidAmount"])
}

func TestSummarizeInvalidComponentKeepsDisplayTotal(t *testing.T) {
	res := Summarize(profile(t, "manpower-services"), map[string]any{
		"name":          "Rahim",
		"vendorName":    "Global Staffing",
		"vendorBill":    "abc",
		"othersBill":    -10.0,
		"serviceCharge": 800.0,
	}, validators.DefaultLimits())

	assert.Equal(t, "Vendor bill must be a number", res.Errors["vendorBill"])
	assert.Equal(t, "Others bill must not be negative", res.Errors["othersBill"])
	assert.Equal(t, json.Number("800.00"), res.Record["totalBill"])
	assert.Equal(t, json.Number("800.00"), res.Record["dueAmount"])
}

func TestSummarizeTicketServiceCharge(t *testing.T) {
	res := Summarize(profile(t, "ticket-checks"), map[string]any{
		"passengerName": "Nadia",
		"serviceCharge": 1500.0,
		"paidAmount":    1500.0,
	}, validators.DefaultLimits())

	require.True(t, res.OK(), res.Errors)
	assert.Equal(t, json.Number("1500.00"), res.Record["profit"])
	assert.Equal(t, json.Number("100.00"), res.Record["profitPercentage"])
	assert.Equal(t, "profit", res.Record["profitStatus"])
	assert.Equal(t, json.Number("0.00"), res.Record["dueAmount"])
}

func TestSummarizeTicketWithoutChargeIsNeutral(t *testing.T) {
	res := Summarize(profile(t, "ticket-checks"), map[string]any{
		"passengerName": "Nadia",
	}, validators.DefaultLimits())

	assert.Equal(t, json.Number("0.00"), res.Record["profitPercentage"])
	assert.Equal(t, "neutral", res.Record["profitStatus"])
}

func TestSummarizeInvestment(t *testing.T) {
	tests := []struct {
		name       string
		returned   any
		amount     json.Number
		percentage json.Number
		status     string
	}{
		{name: "profit", returned: 115000.0, amount: "15000.00", percentage: "13.04", status: "profit"},
		{name: "loss", returned: "80000", amount: "-20000.00", percentage: "-25.00", status: "loss"},
		{name: "no return yet", returned: nil, amount: "-100000.00", percentage: "0.00", status: "loss"},
		{name: "break even", returned: 100000.0, amount: "0.00", percentage: "0.00", status: "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Summarize(profile(t, "investments"), map[string]any{
				"name":           "Fixed deposit",
				"investmentDate": "2024-01-01",
				"cappingAmount":  100000.0,
				"returnAmount":   tt.returned,
			}, validators.DefaultLimits())

			require.True(t, res.OK(), res.Errors)
			assert.Equal(t, tt.amount, res.Record["profitLossAmount"])
			assert.Equal(t, tt.percentage, res.Record["profitLossPercentage"])
			assert.Equal(t, tt.status, res.Record["profitStatus"])
			assert.Nil(t, res.Summary.Plan)
		})
	}
}

func TestSummarizeInvestmentReturnPlan(t *testing.T) {
	res := Summarize(profile(t, "investments"), map[string]any{
		"name":            "Partnership",
		"investmentDate":  "2024-01-01",
		"cappingAmount":   60000.0,
		"returnAmount":    72000.0,
		"returnType":      "installment",
		"numberOfReturns": 6.0,
		"perReturnAmount": 12000.0,
		"returnStartDate": "2024-08-31",
	}, validators.DefaultLimits())

	require.True(t, res.OK(), res.Errors)
	assert.Equal(t, "2025-01-31", res.Record["returnEndDate"])
	require.Len(t, res.Summary.Schedule, 6)
	assert.Equal(t, "2024-09-30", res.Summary.Schedule[1].DueDate.Format(validators.DateLayout))
}

func TestSummarizeEmployeePayroll(t *testing.T) {
	res := Summarize(profile(t, "employees"), map[string]any{
		"name":                "Sadia",
		"designation":         "Accountant",
		"basicSalary":         30000.0,
		"houseRent":           12000.0,
		"medicalAllowance":    2500.0,
		"conveyanceAllowance": 1500.0,
		"paidSalary":          20000.0,
	}, validators.DefaultLimits())

	require.True(t, res.OK(), res.Errors)
	assert.Equal(t, json.Number("46000.00"), res.Record["grossSalary"])
	assert.Equal(t, json.Number("26000.00"), res.Record["dueSalary"])
	_, hasOverpaid := res.Record["overpaidAmount"]
	assert.False(t, hasOverpaid)
}

func TestSummarizeIsIdempotent(t *testing.T) {
	p := profile(t, "manpower-services")
	first := Summarize(p, map[string]any{
		"name": "Rahim", "vendorName": "X", "vendorBill": "1000.555", "paidAmount": 10.0,
	}, validators.DefaultLimits())
	second := Summarize(p, first.Record, validators.DefaultLimits())

	assert.Equal(t, first.Record, second.Record)
}
