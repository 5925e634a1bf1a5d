package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPatch is a partial field update. Nil means "leave as is"; lifecycle
// and derived fields are deliberately absent — they are owned by the
// transitions and the pricing recompute.
type BudgetPatch struct {
	RequestDate     *time.Time
	Client          *string
	UF              *string
	City            *string
	Route           *string
	RouteID         *string
	BillingType     *BillingType
	VehicleType     *string
	Frequency       *string
	ApproximateTime *string
	FixedPrice      *decimal.Decimal
	StartDate       *time.Time
	DasaValidation  *string
	BdgInclusion    *bool

	Costs         *CostBreakdown
	VariableCosts *VariableCosts

	ProfitPercentage   *decimal.Decimal
	DiscountPercentage *decimal.Decimal
}
