// Package pricing derives every computed money field of a budget.
//
// All arithmetic runs on shopspring decimals so currency values never drift
// through binary floats. Nothing here performs I/O and nothing rounds an
// intermediate value; callers round at the display boundary.
package pricing

import (
	"vitta_logistica/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Totals is the full derived-value set for one budget.
type Totals struct {
	TotalKm        decimal.Decimal
	TotalFuel      decimal.Decimal
	TotalFuelCost  decimal.Decimal
	CostsTotal     decimal.Decimal
	SuppliersTotal decimal.Decimal
	Subtotal       decimal.Decimal
	ProfitAmount   decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalValue     decimal.Decimal
}

// Inputs gathers everything the calculator needs. Suppliers contribute only
// while active; percentages are expressed 0-100.
type Inputs struct {
	Costs       entities.CostBreakdown
	Variable    *entities.VariableCosts
	Suppliers   []entities.Supplier
	Margins     entities.Margins
	BillingType entities.BillingType
	FixedPrice  decimal.Decimal
}

// ComputeTotals is deterministic: same inputs, same totals.
//
// Derivation chain (kept from the operations spreadsheet):
//
//	totalKm       = kmPerDay × daysQuantity        (unless overridden)
//	totalFuel     = totalKm / fuelConsumption
//	totalFuelCost = totalFuel × fuelValue
//
// For preco_fixo budgets the final value is the fixed price plus variable
// costs; margin amounts are still derived for display.
func ComputeTotals(in Inputs) Totals {
	var t Totals

	t.TotalKm = in.Costs.TotalKm
	if in.Costs.KmPerDay.IsPositive() && in.Costs.DaysQuantity.IsPositive() {
		t.TotalKm = in.Costs.KmPerDay.Mul(in.Costs.DaysQuantity)
	}

	t.TotalFuel = in.Costs.TotalFuel
	if in.Costs.FuelConsumption.IsPositive() && t.TotalKm.IsPositive() {
		t.TotalFuel = t.TotalKm.Div(in.Costs.FuelConsumption)
	}

	t.TotalFuelCost = in.Costs.TotalFuelCost
	if in.Costs.FuelValue.IsPositive() && t.TotalFuel.IsPositive() {
		t.TotalFuelCost = t.TotalFuel.Mul(in.Costs.FuelValue)
	}

	t.CostsTotal = t.TotalFuelCost.
		Add(in.Costs.ExtraHours).
		Add(in.Costs.Taxes).
		Add(in.Costs.Maintenance).
		Add(in.Costs.Insurance).
		Add(in.Costs.Other).
		Add(variableTotal(in.Variable))

	for _, s := range in.Suppliers {
		if s.Active {
			t.SuppliersTotal = t.SuppliersTotal.Add(s.ProposedValue)
		}
	}

	t.Subtotal = t.CostsTotal.Add(t.SuppliersTotal)
	t.ProfitAmount = t.Subtotal.Mul(in.Margins.ProfitPercentage).Div(oneHundred)
	preDiscount := t.Subtotal.Add(t.ProfitAmount)
	t.DiscountAmount = preDiscount.Mul(in.Margins.DiscountPercentage).Div(oneHundred)
	t.FinalValue = preDiscount.Sub(t.DiscountAmount)

	if in.BillingType == entities.BillingTypePrecoFixo {
		t.FinalValue = in.FixedPrice.Add(variableTotal(in.Variable))
	}

	return t
}

func variableTotal(v *entities.VariableCosts) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return v.ExcessKm.Mul(v.CostPerExcessKm).
		Add(v.EmployeeOvertime).
		Add(v.Tax2)
}

// Apply recomputes the budget's derived fields in place. The stored totals
// exist only for read efficiency; this is the single writer for them.
func Apply(b *entities.Budget) {
	t := ComputeTotals(Inputs{
		Costs:       b.Costs,
		Variable:    b.VariableCosts,
		Suppliers:   b.Suppliers,
		Margins:     b.Margins,
		BillingType: b.BillingType,
		FixedPrice:  b.FixedPrice,
	})

	b.Costs.TotalKm = t.TotalKm
	b.Costs.TotalFuel = t.TotalFuel
	b.Costs.TotalFuelCost = t.TotalFuelCost
	b.Costs.TotalCost = t.CostsTotal
	if b.VariableCosts != nil {
		b.VariableCosts.TotalCost3 = variableTotal(b.VariableCosts)
	}
	b.Margins.ProfitAmount = t.ProfitAmount
	b.Margins.DiscountAmount = t.DiscountAmount
	b.Margins.FinalValue = t.FinalValue
}
