package response

import (
	"time"

	"vitta_logistica/internal/domain/entities"
	"vitta_logistica/pkg"

	"github.com/shopspring/decimal"
)

// Money values are rounded to two decimal places here, at the display
// boundary; stored values keep their full precision.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

type SupplierResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	CNPJ          string  `json:"cnpj"`
	ProposedValue float64 `json:"proposed_value"`
	Category      string  `json:"category"`
	Active        bool    `json:"active"`
}

type CostsResponse struct {
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
	TotalCost       float64 `json:"total_cost"`
}

type VariableCostsResponse struct {
	ExcessKm         float64 `json:"excess_km"`
	CostPerExcessKm  float64 `json:"cost_per_excess_km"`
	EmployeeOvertime float64 `json:"employee_overtime"`
	Tax2             float64 `json:"tax2"`
	TotalCost3       float64 `json:"total_cost3"`
}

type MarginsResponse struct {
	ProfitPercentage   float64 `json:"profit_percentage"`
	DiscountPercentage float64 `json:"discount_percentage"`
	ProfitAmount       float64 `json:"profit_amount"`
	DiscountAmount     float64 `json:"discount_amount"`
	FinalValue         float64 `json:"final_value"`
}

type BudgetResponse struct {
	ID           string `json:"id"`
	BudgetNumber string `json:"budget_number"`

	RequestDate     time.Time `json:"request_date"`
	Client          string    `json:"client"`
	UF              string    `json:"uf"`
	City            string    `json:"city"`
	Route           string    `json:"route"`
	RouteID         string    `json:"route_id"`
	BillingType     string    `json:"billing_type"`
	VehicleType     string    `json:"vehicle_type"`
	Frequency       string    `json:"frequency"`
	ApproximateTime string    `json:"approximate_time,omitempty"`
	FixedPrice      float64   `json:"fixed_price"`

	Costs         CostsResponse          `json:"costs"`
	VariableCosts *VariableCostsResponse `json:"variable_costs,omitempty"`
	Margins       MarginsResponse        `json:"margins"`
	Suppliers     []SupplierResponse     `json:"suppliers"`

	Status         string     `json:"status"`
	SendDate       *time.Time `json:"send_date,omitempty"`
	ApprovalDate   *time.Time `json:"approval_date,omitempty"`
	ApprovedBy     string     `json:"approved_by,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	DeletionDate   *time.Time `json:"deletion_date,omitempty"`
	DasaValidation string     `json:"dasa_validation,omitempty"`
	BdgInclusion   bool       `json:"bdg_inclusion"`

	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Version int64 `json:"version"`
}

func FromBudget(b entities.Budget) BudgetResponse {
	res := BudgetResponse{
		ID:              b.ID,
		BudgetNumber:    b.BudgetNumber,
		RequestDate:     b.RequestDate,
		Client:          b.Client,
		UF:              b.UF,
		City:            b.City,
		Route:           b.Route,
		RouteID:         b.RouteID,
		BillingType:     string(b.BillingType),
		VehicleType:     b.VehicleType,
		Frequency:       b.Frequency,
		ApproximateTime: b.ApproximateTime,
		FixedPrice:      money(b.FixedPrice),
		Costs: CostsResponse{
			KmPerDay:        money(b.Costs.KmPerDay),
			DaysQuantity:    money(b.Costs.DaysQuantity),
			TotalKm:         money(b.Costs.TotalKm),
			FuelConsumption: money(b.Costs.FuelConsumption),
			FuelValue:       money(b.Costs.FuelValue),
			TotalFuel:       money(b.Costs.TotalFuel),
			TotalFuelCost:   money(b.Costs.TotalFuelCost),
			ExtraHours:      money(b.Costs.ExtraHours),
			Taxes:           money(b.Costs.Taxes),
			Maintenance:     money(b.Costs.Maintenance),
			Insurance:       money(b.Costs.Insurance),
			Other:           money(b.Costs.Other),
			TotalCost:       money(b.Costs.TotalCost),
		},
		Margins: MarginsResponse{
			ProfitPercentage:   money(b.Margins.ProfitPercentage),
			DiscountPercentage: money(b.Margins.DiscountPercentage),
			ProfitAmount:       money(b.Margins.ProfitAmount),
			DiscountAmount:     money(b.Margins.DiscountAmount),
			FinalValue:         money(b.Margins.FinalValue),
		},
		Status:         string(b.Status),
		SendDate:       b.SendDate,
		ApprovalDate:   b.ApprovalDate,
		ApprovedBy:     b.ApprovedBy,
		StartDate:      b.StartDate,
		DeletionDate:   b.DeletionDate,
		DasaValidation: b.DasaValidation,
		BdgInclusion:   b.BdgInclusion,
		CreatedBy:      b.CreatedBy,
		UpdatedBy:      b.UpdatedBy,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
		Version:        b.Version,
	}

	if b.VariableCosts != nil {
		res.VariableCosts = &VariableCostsResponse{
			ExcessKm:         money(b.VariableCosts.ExcessKm),
			CostPerExcessKm:  money(b.VariableCosts.CostPerExcessKm),
			EmployeeOvertime: money(b.VariableCosts.EmployeeOvertime),
			Tax2:             money(b.VariableCosts.Tax2),
			TotalCost3:       money(b.VariableCosts.TotalCost3),
		}
	}

	res.Suppliers = make([]SupplierResponse, 0, len(b.Suppliers))
	for _, s := range b.Suppliers {
		res.Suppliers = append(res.Suppliers, SupplierResponse{
			ID:            s.ID,
			Name:          s.Name,
			CNPJ:          pkg.FormatCNPJ(s.CNPJ),
			ProposedValue: money(s.ProposedValue),
			Category:      string(s.Category),
			Active:        s.Active,
		})
	}
	return res
}

func FromBudgets(bs []entities.Budget) []BudgetResponse {
	out := make([]BudgetResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, FromBudget(b))
	}
	return out
}
