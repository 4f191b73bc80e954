package entities

import (
	"sort"

	"github.com/cloud-ru/erp-finance-summary/internal/calculations"
)

// Идентификаторы модулей для контекста доступа
const (
	ModuleAsset      = "asset"
	ModuleManpower   = "manpower"
	ModulePassport   = "passport"
	ModuleTicketing  = "ticketing"
	ModuleInvestment = "investment"
	ModuleHR         = "hr"
)

var profiles = map[string]Profile{
	"assets": {
		Resource:     "assets",
		Envelope:     "asset",
		Module:       ModuleAsset,
		Required:     []string{"name", "type"},
		Dates:        []DateRule{{Field: "purchaseDate", Required: true}},
		PaidField:    "totalPaidAmount",
		PaidPositive: true,
		Plan: &PlanFields{
			TypeField:           "paymentType",
			DefaultType:         calculations.PlanOneTime,
			CountField:          "numberOfInstallments",
			PerInstallmentField: "perInstallmentAmount",
			StartField:          "installmentStartDate",
			EndField:            "installmentEndDate",
			OneTimeDateField:    "purchaseDate",
		},
	},
	"manpower-services": {
		Resource:   "manpower-services",
		Envelope:   "manpowerService",
		Module:     ModuleManpower,
		Required:   []string{"name", "vendorName"},
		Dates:      []DateRule{{Field: "serviceDate"}},
		Components: []string{"vendorBill", "othersBill", "serviceCharge"},
		TotalField: "totalBill",
		PaidField:  "paidAmount",
		DueField:   "dueAmount",

		OverpaidField: "overpaidAmount",
	},
	"passport-services": {
		Resource:   "passport-services",
		Envelope:   "passportService",
		Module:     ModulePassport,
		Required:   []string{"name", "passportNumber"},
		Dates:      []DateRule{{Field: "deliveryDate"}},
		Components: []string{"passportFee", "bankCharge", "vendorFee", "formFee"},
		TotalField: "totalAmount",
		PaidField:  "paidAmount",
		DueField:   "dueAmount",

		OverpaidField: "overpaidAmount",
	},
	"ticket-checks": {
		Resource:   "ticket-checks",
		Envelope:   "ticketCheck",
		Module:     ModuleTicketing,
		Required:   []string{"passengerName"},
		Dates:      []DateRule{{Field: "travelDate"}},
		Components: []string{"serviceCharge"},
		TotalField: "totalBill",
		PaidField:  "paidAmount",
		DueField:   "dueAmount",

		OverpaidField: "overpaidAmount",
		Profit: &ProfitFields{
			SellingField:    "serviceCharge",
			AmountField:     "profit",
			PercentageField: "profitPercentage",
			StatusField:     "profitStatus",
		},
	},
	"investments": {
		Resource: "investments",
		Envelope: "investment",
		Module:   ModuleInvestment,
		Required: []string{"name"},
		Dates:    []DateRule{{Field: "investmentDate", Required: true}},
		Amounts: []AmountRule{
			{Field: "cappingAmount", Required: true, Positive: true},
			{Field: "returnAmount"},
		},
		Plan: &PlanFields{
			TypeField:           "returnType",
			CountField:          "numberOfReturns",
			PerInstallmentField: "perReturnAmount",
			StartField:          "returnStartDate",
			EndField:            "returnEndDate",
			OneTimeDateField:    "returnDate",
		},
		Profit: &ProfitFields{
			CostingField:    "cappingAmount",
			SellingField:    "returnAmount",
			AmountField:     "profitLossAmount",
			PercentageField: "profitLossPercentage",
			StatusField:     "profitStatus",
		},
	},
	"employees": {
		Resource: "employees",
		Envelope: "employee",
		Module:   ModuleHR,
		Required: []string{"name", "designation"},
		Dates:    []DateRule{{Field: "joiningDate"}},
		Components: []string{
			"basicSalary", "houseRent", "medicalAllowance", "conveyanceAllowance", "otherAllowance",
		},
		TotalField: "grossSalary",
		PaidField:  "paidSalary",
		DueField:   "dueSalary",
	},
}

// Lookup возвращает профиль по имени REST ресурса
func Lookup(resource string) (Profile, bool) {
	p, ok := profiles[resource]
	return p, ok
}

// All возвращает все профили по имени ресурса
func All() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}
