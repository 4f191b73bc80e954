package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilesAreConsistent(t *testing.T) {
	all := All()
	require.Len(t, all, 6)
	for _, p := range all {
		t.Run(p.Resource, func(t *testing.T) {
			assert.NoError(t, p.Validate())
		})
	}
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("manpower-services")
	require.True(t, ok)
	assert.Equal(t, "manpowerService", p.Envelope)
	assert.Equal(t, ModuleManpower, p.Module)
	assert.Equal(t, []string{"totalBill", "dueAmount", "overpaidAmount"}, p.Derived())
	assert.True(t, p.HasBill())

	_, ok = Lookup("invoices")
	assert.False(t, ok)
}

func TestDerivedIncludesPlanAndProfit(t *testing.T) {
	p, _ := Lookup("investments")
	assert.Equal(t,
		[]string{"returnEndDate", "profitLossAmount", "profitLossPercentage", "profitStatus"},
		p.Derived())
	assert.False(t, p.HasBill())
}

func TestValidateRejectsBrokenProfiles(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
	}{
		{
			name:    "missing module",
			profile: Profile{Resource: "x", Envelope: "x"},
		},
		{
			name:    "components without total",
			profile: Profile{Resource: "x", Envelope: "x", Module: "m", Components: []string{"fee"}},
		},
		{
			name: "paid and total without due",
			profile: Profile{
				Resource: "x", Envelope: "x", Module: "m",
				Components: []string{"fee"}, TotalField: "total", PaidField: "paid",
			},
		},
		{
			name: "derived field used as input",
			profile: Profile{
				Resource: "x", Envelope: "x", Module: "m",
				Components: []string{"fee", "total"}, TotalField: "total",
			},
		},
		{
			name: "service charge not an input",
			profile: Profile{
				Resource: "x", Envelope: "x", Module: "m",
				Profit: &ProfitFields{
					SellingField: "charge", AmountField: "a", PercentageField: "p", StatusField: "s",
				},
			},
		},
		{
			name: "unknown default plan",
			profile: Profile{
				Resource: "x", Envelope: "x", Module: "m",
				Plan: &PlanFields{
					TypeField: "t", DefaultType: "weekly", CountField: "c",
					PerInstallmentField: "p", StartField: "s", EndField: "e",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.profile.Validate())
		})
	}
}
