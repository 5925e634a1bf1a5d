package pricing

import (
	"testing"

	"vitta_logistica/internal/domain/entities"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeTotals_FuelDerivationChain(t *testing.T) {
	in := Inputs{
		Costs: entities.CostBreakdown{
			KmPerDay:        dec("85"),
			DaysQuantity:    dec("22"),
			FuelConsumption: dec("8.5"),
			FuelValue:       dec("5.59"),
		},
		BillingType: entities.BillingTypePorKm,
	}

	got := ComputeTotals(in)
	if !got.TotalKm.Equal(dec("1870")) {
		t.Fatalf("expected totalKm 1870, got %s", got.TotalKm)
	}
	if !got.TotalFuel.Equal(dec("220")) {
		t.Fatalf("expected totalFuel 220, got %s", got.TotalFuel)
	}
	if !got.TotalFuelCost.Equal(dec("1229.8")) {
		t.Fatalf("expected fuel cost 1229.80, got %s", got.TotalFuelCost)
	}
	if !got.CostsTotal.Equal(dec("1229.8")) {
		t.Fatalf("expected costs total 1229.80, got %s", got.CostsTotal)
	}
}

func TestComputeTotals_ExplicitOverridesKept(t *testing.T) {
	// With no per-day inputs the explicitly stored totals must survive.
	in := Inputs{
		Costs: entities.CostBreakdown{
			TotalKm:       dec("1500"),
			TotalFuel:     dec("180"),
			TotalFuelCost: dec("990.50"),
		},
		BillingType: entities.BillingTypePorMes,
	}

	got := ComputeTotals(in)
	if !got.TotalKm.Equal(dec("1500")) || !got.TotalFuel.Equal(dec("180")) || !got.TotalFuelCost.Equal(dec("990.50")) {
		t.Fatalf("expected overrides kept, got %+v", got)
	}
}

func TestComputeTotals_MarginFormula(t *testing.T) {
	in := Inputs{
		Costs:       entities.CostBreakdown{TotalFuelCost: dec("1229.80")},
		Margins:     entities.Margins{ProfitPercentage: dec("68.7")},
		BillingType: entities.BillingTypePorKm,
	}

	got := ComputeTotals(in)
	if !got.Subtotal.Equal(dec("1229.80")) {
		t.Fatalf("expected subtotal 1229.80, got %s", got.Subtotal)
	}
	if !got.ProfitAmount.Equal(dec("844.8726")) {
		t.Fatalf("expected profit 844.8726, got %s", got.ProfitAmount)
	}
	if !got.DiscountAmount.Equal(decimal.Zero) {
		t.Fatalf("expected zero discount, got %s", got.DiscountAmount)
	}
	if !got.FinalValue.Equal(dec("2074.6726")) {
		t.Fatalf("expected final 2074.6726, got %s", got.FinalValue)
	}
}

func TestComputeTotals_SuppliersAndDiscount(t *testing.T) {
	in := Inputs{
		Costs: entities.CostBreakdown{TotalFuelCost: dec("1000")},
		Suppliers: []entities.Supplier{
			{ProposedValue: dec("500"), Active: true},
			{ProposedValue: dec("300"), Active: true},
			{ProposedValue: dec("9999"), Active: false},
		},
		Margins: entities.Margins{
			ProfitPercentage:   dec("10"),
			DiscountPercentage: dec("5"),
		},
		BillingType: entities.BillingTypePorDiaria,
	}

	got := ComputeTotals(in)
	if !got.SuppliersTotal.Equal(dec("800")) {
		t.Fatalf("expected suppliers total 800, got %s", got.SuppliersTotal)
	}
	// subtotal 1800, profit 180, preDiscount 1980, discount 99, final 1881
	if !got.ProfitAmount.Equal(dec("180")) {
		t.Fatalf("expected profit 180, got %s", got.ProfitAmount)
	}
	if !got.DiscountAmount.Equal(dec("99")) {
		t.Fatalf("expected discount 99, got %s", got.DiscountAmount)
	}
	if !got.FinalValue.Equal(dec("1881")) {
		t.Fatalf("expected final 1881, got %s", got.FinalValue)
	}
}

func TestComputeTotals_Deterministic(t *testing.T) {
	in := Inputs{
		Costs:       entities.CostBreakdown{TotalFuelCost: dec("777.77"), ExtraHours: dec("320")},
		Suppliers:   []entities.Supplier{{ProposedValue: dec("1234.56"), Active: true}},
		Margins:     entities.Margins{ProfitPercentage: dec("33.3"), DiscountPercentage: dec("7.5")},
		BillingType: entities.BillingTypePorHora,
	}

	first := ComputeTotals(in)
	second := ComputeTotals(in)
	if !first.FinalValue.Equal(second.FinalValue) {
		t.Fatalf("expected deterministic final value, got %s then %s", first.FinalValue, second.FinalValue)
	}
}

func TestComputeTotals_MonotonicMargins(t *testing.T) {
	base := Inputs{
		Costs:       entities.CostBreakdown{TotalFuelCost: dec("1000")},
		Margins:     entities.Margins{ProfitPercentage: dec("10"), DiscountPercentage: dec("10")},
		BillingType: entities.BillingTypePorKm,
	}

	prev := ComputeTotals(base).FinalValue
	for _, p := range []string{"20", "35", "50", "99"} {
		in := base
		in.Margins.ProfitPercentage = dec(p)
		cur := ComputeTotals(in).FinalValue
		if cur.LessThan(prev) {
			t.Fatalf("final value decreased when profit rose to %s%%: %s < %s", p, cur, prev)
		}
		prev = cur
	}

	prev = ComputeTotals(base).FinalValue
	for _, d := range []string{"20", "35", "50", "99"} {
		in := base
		in.Margins.DiscountPercentage = dec(d)
		cur := ComputeTotals(in).FinalValue
		if cur.GreaterThan(prev) {
			t.Fatalf("final value increased when discount rose to %s%%: %s > %s", d, cur, prev)
		}
		prev = cur
	}
}

func TestComputeTotals_FixedPriceMode(t *testing.T) {
	in := Inputs{
		Costs:      entities.CostBreakdown{TotalFuelCost: dec("1000")},
		Margins:    entities.Margins{ProfitPercentage: dec("50")},
		FixedPrice: dec("4500"),
		Variable: &entities.VariableCosts{
			ExcessKm:         dec("100"),
			CostPerExcessKm:  dec("2.50"),
			EmployeeOvertime: dec("80"),
		},
		BillingType: entities.BillingTypePrecoFixo,
	}

	got := ComputeTotals(in)
	// fixed 4500 + excess 250 + overtime 80
	if !got.FinalValue.Equal(dec("4830")) {
		t.Fatalf("expected final 4830, got %s", got.FinalValue)
	}
}

func TestApply_WritesDerivedFieldsBack(t *testing.T) {
	b := &entities.Budget{
		BillingType: entities.BillingTypePorKm,
		Costs: entities.CostBreakdown{
			KmPerDay:        dec("85"),
			DaysQuantity:    dec("22"),
			FuelConsumption: dec("8.5"),
			FuelValue:       dec("5.59"),
			ExtraHours:      dec("320"),
		},
		Margins: entities.Margins{ProfitPercentage: dec("68.7")},
		VariableCosts: &entities.VariableCosts{
			ExcessKm:        dec("10"),
			CostPerExcessKm: dec("2"),
		},
	}

	Apply(b)

	if !b.Costs.TotalKm.Equal(dec("1870")) {
		t.Fatalf("expected totalKm 1870, got %s", b.Costs.TotalKm)
	}
	if !b.VariableCosts.TotalCost3.Equal(dec("20")) {
		t.Fatalf("expected variable total 20, got %s", b.VariableCosts.TotalCost3)
	}
	// fuel 1229.80 + extra 320 + variable 20 = 1569.80
	if !b.Costs.TotalCost.Equal(dec("1569.8")) {
		t.Fatalf("expected total cost 1569.80, got %s", b.Costs.TotalCost)
	}
	if b.Margins.FinalValue.IsZero() {
		t.Fatalf("expected final value to be recomputed")
	}

	before := b.Margins.FinalValue
	Apply(b)
	if !b.Margins.FinalValue.Equal(before) {
		t.Fatalf("expected idempotent recompute, got %s then %s", before, b.Margins.FinalValue)
	}
}
