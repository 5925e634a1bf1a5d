package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetStatus represents the lifecycle of a freight budget (orçamento).
//
// Domain notes:
//   - Status names follow the operational vocabulary used by the logistics team.
//   - Transitions are validated by CanTransitionTo before any field is touched.

type BudgetStatus string

const (
	BudgetStatusRascunho  BudgetStatus = "rascunho"
	BudgetStatusEnviado   BudgetStatus = "enviado"
	BudgetStatusAprovado  BudgetStatus = "aprovado"
	BudgetStatusRejeitado BudgetStatus = "rejeitado"
	BudgetStatusExcluido  BudgetStatus = "excluido"
)

// budgetTransitions is the single source of truth for allowed status moves.
// Deletion is a soft transition: the record stays queryable for audit.
var budgetTransitions = map[BudgetStatus][]BudgetStatus{
	BudgetStatusRascunho:  {BudgetStatusEnviado, BudgetStatusExcluido},
	BudgetStatusEnviado:   {BudgetStatusAprovado, BudgetStatusRejeitado, BudgetStatusExcluido},
	BudgetStatusAprovado:  {BudgetStatusExcluido},
	BudgetStatusRejeitado: {},
	BudgetStatusExcluido:  {},
}

func (s BudgetStatus) Valid() bool {
	_, ok := budgetTransitions[s]
	return ok
}

func (s BudgetStatus) CanTransitionTo(to BudgetStatus) bool {
	for _, next := range budgetTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s BudgetStatus) Terminal() bool {
	return len(budgetTransitions[s]) == 0
}

// Mutable reports whether budget fields may still be edited in this status.
// Approved, rejected and deleted budgets are frozen except for reads.
func (s BudgetStatus) Mutable() bool {
	return s == BudgetStatusRascunho || s == BudgetStatusEnviado
}

// BillingType discriminates how a budget's final value is derived.
//
// preco_fixo budgets resolve to fixedPrice plus variable costs; every other
// billing type goes through the full cost + supplier + margin formula.

type BillingType string

const (
	BillingTypePorKm     BillingType = "por_km"
	BillingTypePorHora   BillingType = "por_hora"
	BillingTypePorDiaria BillingType = "por_diaria"
	BillingTypePorMes    BillingType = "por_mes"
	BillingTypePrecoFixo BillingType = "preco_fixo"
)

func (b BillingType) Valid() bool {
	switch b {
	case BillingTypePorKm, BillingTypePorHora, BillingTypePorDiaria, BillingTypePorMes, BillingTypePrecoFixo:
		return true
	}
	return false
}

// SupplierCategory classifies a supplier proposal.

type SupplierCategory string

const (
	SupplierCategoryMotorista   SupplierCategory = "motorista"
	SupplierCategoryVeiculo     SupplierCategory = "veiculo"
	SupplierCategoryCombustivel SupplierCategory = "combustivel"
	SupplierCategoryManutencao  SupplierCategory = "manutencao"
)

func (c SupplierCategory) Valid() bool {
	switch c {
	case SupplierCategoryMotorista, SupplierCategoryVeiculo, SupplierCategoryCombustivel, SupplierCategoryManutencao:
		return true
	}
	return false
}

// Supplier is a priced third-party proposal attached to exactly one Budget.
// CNPJ is stored normalized (14 digits only); formatting is a display concern.
type Supplier struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	CNPJ          string           `json:"cnpj"`
	ProposedValue decimal.Decimal  `json:"proposed_value"`
	Category      SupplierCategory `json:"category"`
	Active        bool             `json:"active"`
}

// CostBreakdown holds the operational cost inputs and their derived chain.
//
// TotalKm, TotalFuel and TotalFuelCost are recomputed from their inputs when
// those inputs are present; otherwise an explicitly provided value is kept.
type CostBreakdown struct {
	KmPerDay        decimal.Decimal `json:"km_per_day"`
	DaysQuantity    decimal.Decimal `json:"days_quantity"`
	TotalKm         decimal.Decimal `json:"total_km"`
	FuelConsumption decimal.Decimal `json:"fuel_consumption"`
	FuelValue       decimal.Decimal `json:"fuel_value"`
	TotalFuel       decimal.Decimal `json:"total_fuel"`
	TotalFuelCost   decimal.Decimal `json:"total_fuel_cost"`
	ExtraHours      decimal.Decimal `json:"extra_hours"`
	Taxes           decimal.Decimal `json:"taxes"`
	Maintenance     decimal.Decimal `json:"maintenance"`
	Insurance       decimal.Decimal `json:"insurance"`
	Other           decimal.Decimal `json:"other"`
	TotalCost       decimal.Decimal `json:"total_cost"`
}

// VariableCosts are optional month-to-month extras.
type VariableCosts struct {
	ExcessKm         decimal.Decimal `json:"excess_km"`
	CostPerExcessKm  decimal.Decimal `json:"cost_per_excess_km"`
	EmployeeOvertime decimal.Decimal `json:"employee_overtime"`
	Tax2             decimal.Decimal `json:"tax2"`
	TotalCost3       decimal.Decimal `json:"total_cost3"`
}

// Margins carries the percentage inputs and the derived money amounts.
type Margins struct {
	ProfitPercentage   decimal.Decimal `json:"profit_percentage"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	ProfitAmount       decimal.Decimal `json:"profit_amount"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	FinalValue         decimal.Decimal `json:"final_value"`
}

// Budget is the central freight-transport budget persisted in DynamoDB.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (budget_number-index): budget_number (uniqueness guard item on write)
//
// Concurrency:
//   - Version is bumped on every write; stale writes are rejected.
type Budget struct {
	ID           string `json:"id"`
	BudgetNumber string `json:"budget_number"`

	RequestDate     time.Time   `json:"request_date"`
	Client          string      `json:"client"`
	UF              string      `json:"uf"`
	City            string      `json:"city"`
	Route           string      `json:"route"`
	RouteID         string      `json:"route_id"`
	BillingType     BillingType `json:"billing_type"`
	VehicleType     string      `json:"vehicle_type"`
	Frequency       string      `json:"frequency"`
	ApproximateTime string      `json:"approximate_time"`

	FixedPrice decimal.Decimal `json:"fixed_price"`

	Costs         CostBreakdown  `json:"costs"`
	VariableCosts *VariableCosts `json:"variable_costs,omitempty"`
	Margins       Margins        `json:"margins"`
	Suppliers     []Supplier     `json:"suppliers"`

	Status         BudgetStatus `json:"status"`
	SendDate       *time.Time   `json:"send_date,omitempty"`
	ApprovalDate   *time.Time   `json:"approval_date,omitempty"`
	ApprovedBy     string       `json:"approved_by,omitempty"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	DeletionDate   *time.Time   `json:"deletion_date,omitempty"`
	DasaValidation string       `json:"dasa_validation,omitempty"`
	BdgInclusion   bool         `json:"bdg_inclusion"`

	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Version int64 `json:"version"`
}

// SupplierByID returns the index of the supplier with the given id, or -1.
func (b *Budget) SupplierByID(id string) int {
	for i, s := range b.Suppliers {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// BudgetFilter enumerates the supported list predicates explicitly.
// Zero values mean "not filtered". Deleted budgets are excluded unless the
// status filter asks for them.
type BudgetFilter struct {
	Client          string
	Status          BudgetStatus
	UF              string
	DasaValidation  string
	BdgInclusion    *bool
	RequestDateFrom *time.Time
	RequestDateTo   *time.Time
}
