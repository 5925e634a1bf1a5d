package request

import (
	"time"

	"vitta_logistica/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// CostsRequest mirrors the operational cost inputs. Derived fields may be
// sent (to override) or omitted.
type CostsRequest struct {
	KmPerDay        float64 `json:"km_per_day"`
	DaysQuantity    float64 `json:"days_quantity"`
	TotalKm         float64 `json:"total_km"`
	FuelConsumption float64 `json:"fuel_consumption"`
	FuelValue       float64 `json:"fuel_value"`
	TotalFuel       float64 `json:"total_fuel"`
	TotalFuelCost   float64 `json:"total_fuel_cost"`
	ExtraHours      float64 `json:"extra_hours"`
	Taxes           float64 `json:"taxes"`
	Maintenance     float64 `json:"maintenance"`
	Insurance       float64 `json:"insurance"`
	Other           float64 `json:"other"`
}

type VariableCostsRequest struct {
	ExcessKm         float64 `json:"excess_km"`
	CostPerExcessKm  float64 `json:"cost_per_excess_km"`
	EmployeeOvertime float64 `json:"employee_overtime"`
	Tax2             float64 `json:"tax2"`
}

type MarginsRequest struct {
	ProfitPercentage   float64 `json:"profit_percentage"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

type SupplierRequest struct {
	Name          string  `json:"name" binding:"required"`
	CNPJ          string  `json:"cnpj" binding:"required"`
	ProposedValue float64 `json:"proposed_value" binding:"required"`
	Category      string  `json:"category" binding:"required"`
}

func (r SupplierRequest) ToEntity() entities.Supplier {
	return entities.Supplier{
		Name:          r.Name,
		CNPJ:          r.CNPJ,
		ProposedValue: decimal.NewFromFloat(r.ProposedValue),
		Category:      entities.SupplierCategory(r.Category),
	}
}

// CreateBudgetRequest is the POST /budgets payload. Domain-level validation
// (CNPJ digits, percent ranges, enum membership) happens in the use case;
// binding tags only enforce payload shape.
type CreateBudgetRequest struct {
	BudgetNumber    string                `json:"budget_number" binding:"required"`
	RequestDate     time.Time             `json:"request_date" binding:"required"`
	Client          string                `json:"client" binding:"required"`
	UF              string                `json:"uf" binding:"required"`
	City            string                `json:"city" binding:"required"`
	Route           string                `json:"route" binding:"required"`
	RouteID         string                `json:"route_id" binding:"required"`
	BillingType     string                `json:"billing_type" binding:"required"`
	VehicleType     string                `json:"vehicle_type" binding:"required"`
	Frequency       string                `json:"frequency" binding:"required"`
	ApproximateTime string                `json:"approximate_time"`
	FixedPrice      float64               `json:"fixed_price"`
	Costs           CostsRequest          `json:"costs"`
	VariableCosts   *VariableCostsRequest `json:"variable_costs"`
	Margins         MarginsRequest        `json:"margins"`
	Suppliers       []SupplierRequest     `json:"suppliers"`
	StartDate       *time.Time            `json:"start_date"`
	DasaValidation  string                `json:"dasa_validation"`
	BdgInclusion    bool                  `json:"bdg_inclusion"`
}

func (r CreateBudgetRequest) ToEntity() entities.Budget {
	b := entities.Budget{
		BudgetNumber:    r.BudgetNumber,
		RequestDate:     r.RequestDate,
		Client:          r.Client,
		UF:              r.UF,
		City:            r.City,
		Route:           r.Route,
		RouteID:         r.RouteID,
		BillingType:     entities.BillingType(r.BillingType),
		VehicleType:     r.VehicleType,
		Frequency:       r.Frequency,
		ApproximateTime: r.ApproximateTime,
		FixedPrice:      decimal.NewFromFloat(r.FixedPrice),
		Costs:           r.Costs.toEntity(),
		VariableCosts:   r.VariableCosts.toEntity(),
		Margins: entities.Margins{
			ProfitPercentage:   decimal.NewFromFloat(r.Margins.ProfitPercentage),
			DiscountPercentage: decimal.NewFromFloat(r.Margins.DiscountPercentage),
		},
		StartDate:      r.StartDate,
		DasaValidation: r.DasaValidation,
		BdgInclusion:   r.BdgInclusion,
	}
	for _, s := range r.Suppliers {
		b.Suppliers = append(b.Suppliers, s.ToEntity())
	}
	return b
}

func (c CostsRequest) toEntity() entities.CostBreakdown {
	return entities.CostBreakdown{
		KmPerDay:        decimal.NewFromFloat(c.KmPerDay),
		DaysQuantity:    decimal.NewFromFloat(c.DaysQuantity),
		TotalKm:         decimal.NewFromFloat(c.TotalKm),
		FuelConsumption: decimal.NewFromFloat(c.FuelConsumption),
		FuelValue:       decimal.NewFromFloat(c.FuelValue),
		TotalFuel:       decimal.NewFromFloat(c.TotalFuel),
		TotalFuelCost:   decimal.NewFromFloat(c.TotalFuelCost),
		ExtraHours:      decimal.NewFromFloat(c.ExtraHours),
		Taxes:           decimal.NewFromFloat(c.Taxes),
		Maintenance:     decimal.NewFromFloat(c.Maintenance),
		Insurance:       decimal.NewFromFloat(c.Insurance),
		Other:           decimal.NewFromFloat(c.Other),
	}
}

func (v *VariableCostsRequest) toEntity() *entities.VariableCosts {
	if v == nil {
		return nil
	}
	return &entities.VariableCosts{
		ExcessKm:         decimal.NewFromFloat(v.ExcessKm),
		CostPerExcessKm:  decimal.NewFromFloat(v.CostPerExcessKm),
		EmployeeOvertime: decimal.NewFromFloat(v.EmployeeOvertime),
		Tax2:             decimal.NewFromFloat(v.Tax2),
	}
}

// UpdateBudgetRequest is the PUT /budgets/:id payload. Pointer fields
// distinguish "not sent" from zero values.
type UpdateBudgetRequest struct {
	RequestDate     *time.Time            `json:"request_date"`
	Client          *string               `json:"client"`
	UF              *string               `json:"uf"`
	City            *string               `json:"city"`
	Route           *string               `json:"route"`
	RouteID         *string               `json:"route_id"`
	BillingType     *string               `json:"billing_type"`
	VehicleType     *string               `json:"vehicle_type"`
	Frequency       *string               `json:"frequency"`
	ApproximateTime *string               `json:"approximate_time"`
	FixedPrice      *float64              `json:"fixed_price"`
	Costs           *CostsRequest         `json:"costs"`
	VariableCosts   *VariableCostsRequest `json:"variable_costs"`
	Margins         *MarginsRequest       `json:"margins"`
	StartDate       *time.Time            `json:"start_date"`
	DasaValidation  *string               `json:"dasa_validation"`
	BdgInclusion    *bool                 `json:"bdg_inclusion"`
}

func (r UpdateBudgetRequest) ToPatch() entities.BudgetPatch {
	p := entities.BudgetPatch{
		RequestDate:     r.RequestDate,
		Client:          r.Client,
		UF:              r.UF,
		City:            r.City,
		Route:           r.Route,
		RouteID:         r.RouteID,
		VehicleType:     r.VehicleType,
		Frequency:       r.Frequency,
		ApproximateTime: r.ApproximateTime,
		StartDate:       r.StartDate,
		DasaValidation:  r.DasaValidation,
		BdgInclusion:    r.BdgInclusion,
	}
	if r.BillingType != nil {
		bt := entities.BillingType(*r.BillingType)
		p.BillingType = &bt
	}
	if r.FixedPrice != nil {
		fp := decimal.NewFromFloat(*r.FixedPrice)
		p.FixedPrice = &fp
	}
	if r.Costs != nil {
		costs := r.Costs.toEntity()
		p.Costs = &costs
	}
	if r.VariableCosts != nil {
		p.VariableCosts = r.VariableCosts.toEntity()
	}
	if r.Margins != nil {
		profit := decimal.NewFromFloat(r.Margins.ProfitPercentage)
		discount := decimal.NewFromFloat(r.Margins.DiscountPercentage)
		p.ProfitPercentage = &profit
		p.DiscountPercentage = &discount
	}
	return p
}
