package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloud-ru/erp-finance-summary/internal/validators"
)

func TestDraftRecomputesOnSet(t *testing.T) {
	d := NewDraft(profile(t, "manpower-services"), validators.DefaultLimits(), nil)

	d.Set("vendorBill", "5000")
	d.Set("othersBill", "1200")
	assert.Equal(t, json.Number("6200.00"), d.Values()["totalBill"])

	d.Set("serviceCharge", "800")
	d.Set("paidAmount", "4000")
	values := d.Values()
	assert.Equal(t, json.Number("7000.00"), values["totalBill"])
	assert.Equal(t, json.Number("3000.00"), values["dueAmount"])
	assert.True(t, d.Errors().OK(), "errors appear only after submit")
}

func TestDraftClearsFieldErrorOnEdit(t *testing.T) {
	d := NewDraft(profile(t, "assets"), validators.DefaultLimits(), map[string]any{
		"type": "Furniture",
	})

	res := d.Submit()
	assert.False(t, res.OK())
	assert.Contains(t, d.Errors(), "name")
	assert.Contains(t, d.Errors(), "purchaseDate")

	d.Set("name", "Desk")
	errs := d.Errors()
	assert.NotContains(t, errs, "name")
	assert.Contains(t, errs, "purchaseDate")

	// некорректная правка не показывается до следующего Submit
	d.Set("purchaseDate", "yesterday")
	assert.NotContains(t, d.Errors(), "purchaseDate")

	d.Set("purchaseDate", "2024-02-29")
	d.Set("totalPaidAmount", 15000)
	res = d.Submit()
	assert.True(t, res.OK(), res.Errors)
	assert.True(t, d.Errors().OK())
}

func TestDraftWarnings(t *testing.T) {
	d := NewDraft(profile(t, "manpower-services"), validators.DefaultLimits(), map[string]any{
		"vendorBill": 100.0,
	})
	assert.True(t, d.Warnings().OK())

	d.Set("paidAmount", 150.0)
	assert.Contains(t, d.Warnings(), "paidAmount")

	d.Set("paidAmount", nil)
	assert.True(t, d.Warnings().OK())
}
