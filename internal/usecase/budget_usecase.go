package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"vitta_logistica/internal/domain/access"
	"vitta_logistica/internal/domain/entities"
	"vitta_logistica/internal/domain/pricing"
	"vitta_logistica/internal/usecase/interfaces"
	"vitta_logistica/pkg"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrBudgetNotFound   = errors.New("budget not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrInvalidBudgetID  = errors.New("invalid budget id")
)

// IBudgetUseCase exposes the budget lifecycle operations.
//
// Every call carries the authenticated principal; authorization happens here,
// before anything is loaded, so a denial never reveals whether the target
// exists. The flow for mutations is always:
//
//	authorize -> load -> validate transition/fields -> apply -> recompute -> persist

type IBudgetUseCase interface {
	Create(ctx context.Context, p entities.Principal, b entities.Budget) (entities.Budget, error)
	GetByID(ctx context.Context, p entities.Principal, id string) (entities.Budget, error)
	List(ctx context.Context, p entities.Principal, f entities.BudgetFilter) ([]entities.Budget, error)
	UpdateFields(ctx context.Context, p entities.Principal, id string, patch entities.BudgetPatch) (entities.Budget, error)
	AddSupplier(ctx context.Context, p entities.Principal, budgetID string, s entities.Supplier) (entities.Budget, error)
	RemoveSupplier(ctx context.Context, p entities.Principal, budgetID, supplierID string) (entities.Budget, error)
	Submit(ctx context.Context, p entities.Principal, id string) (entities.Budget, error)
	Approve(ctx context.Context, p entities.Principal, id string) (entities.Budget, error)
	Reject(ctx context.Context, p entities.Principal, id string) (entities.Budget, error)
	Delete(ctx context.Context, p entities.Principal, id string) (entities.Budget, error)
}

type BudgetUseCase struct {
	repo interfaces.IBudgetRepository
	now  func() time.Time
}

var _ IBudgetUseCase = (*BudgetUseCase)(nil)

func NewBudgetUseCase(repo interfaces.IBudgetRepository) *BudgetUseCase {
	return &BudgetUseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (u *BudgetUseCase) Create(ctx context.Context, p entities.Principal, b entities.Budget) (entities.Budget, error) {
	if err := access.Authorize(p, access.ActionCreate); err != nil {
		return entities.Budget{}, err
	}

	b.BudgetNumber = strings.TrimSpace(b.BudgetNumber)
	if err := validateBudget(&b); err != nil {
		return entities.Budget{}, err
	}

	// Uniqueness is enforced again at the storage boundary; this check just
	// gives callers a clean error on the common path.
	if existing, err := u.repo.GetByNumber(ctx, b.BudgetNumber); err != nil {
		return entities.Budget{}, err
	} else if existing.ID != "" {
		return entities.Budget{}, interfaces.ErrDuplicateBudgetNumber
	}

	now := u.now()
	b.ID = uuid.NewString()
	b.Status = entities.BudgetStatusRascunho
	b.CreatedBy = p.ID
	b.UpdatedBy = p.ID
	b.CreatedAt = now
	b.UpdatedAt = now
	b.Version = 1
	b.SendDate = nil
	b.ApprovalDate = nil
	b.ApprovedBy = ""
	b.DeletionDate = nil

	for i := range b.Suppliers {
		b.Suppliers[i].ID = uuid.NewString()
		b.Suppliers[i].CNPJ = pkg.NormalizeCNPJ(b.Suppliers[i].CNPJ)
		b.Suppliers[i].Active = true
	}

	pricing.Apply(&b)
	return u.repo.Create(ctx, b)
}

func (u *BudgetUseCase) GetByID(ctx context.Context, p entities.Principal, id string) (entities.Budget, error) {
	if err := access.Authorize(p, access.ActionRead); err != nil {
		return entities.Budget{}, err
	}
	return u.load(ctx, id)
}

func (u *BudgetUseCase) List(ctx context.Context, p entities.Principal, f entities.BudgetFilter) ([]entities.Budget, error) {
	if err := access.Authorize(p, access.ActionRead); err != nil {
		return nil, err
	}
	return u.repo.List(ctx, f)
}

func (u *BudgetUseCase) UpdateFields(ctx context.Context, p entities.Principal, id string, patch entities.BudgetPatch) (entities.Budget, error) {
	if err := access.Authorize(p, access.ActionUpdate); err != nil {
		return entities.Budget{}, err
	}

	b, err := u.load(ctx, id)
	if err != nil {
		return entities.Budget{}, err
	}
	if !b.Status.Mutable() {
		return entities.Budget{}, &entities.InvalidTransitionError{From: b.Status, To: b.Status}
	}

	applyPatch(&b, patch)
	if err := validateBudget(&b); err != nil {
		return entities.Budget{}, err
	}

	u.stamp(&b, p)
	pricing.Apply(&b)
	return u.persist(ctx, b)
}

func (u *BudgetUseCase) AddSupplier(ctx context.Context, p entities.Principal, budgetID string, s entities.Supplier) (entities.Budget, error) {
	if err := access.Authorize(p, access.ActionUpdate); err != nil {
		return entities.Budget{}, err
	}

	b, err := u.load(ctx, budgetID)
	if err != nil {
		return entities.Budget{}, err
	}
	if !b.Status.Mutable() {
		return entities.Budget{}, &entities.InvalidTransitionError{From: b.Status, To: b.Status}
	}

	if err := validateSupplier(&s); err != nil {
		return entities.Budget{}, err
	}

	s.ID = uuid.NewString()
	s.CNPJ = pkg.NormalizeCNPJ(s.CNPJ)
	s.Active = true
	b.Suppliers = append(b.Suppliers, s)

	u.stamp(&b, p)
	pricing.Apply(&b)
	return u.persist(ctx, b)
}

func (u *BudgetUseCase) RemoveSupplier(ctx context.Context, p entities.Principal, budgetID, supplierID string) (entities.Budget, error) {
	if err := access.Authorize(p, access.ActionUpdate); err != nil {
		return entities.Budget{}, err
	}

	b, err := u.load(ctx, budgetID)
	if err != nil {
		return entities.Budget{}, err
	}
	if !b.Status.Mutable() {
		return entities.Budget{}, &entities.InvalidTransitionError{From: b.Status, To: b.Status}
	}

	idx := b.SupplierByID(strings.TrimSpace(supplierID))
	if idx < 0 {
		return entities.Budget{}, ErrSupplierNotFound
	}
	b.Suppliers = append(b.Suppliers[:idx], b.Suppliers[idx+1:]...)

	u.stamp(&b, p)
	pricing.Apply(&b)
	return u.persist(ctx, b)
}

func (u *BudgetUseCase) Submit(ctx context.Context, p entities.Principal, id string) (entities.Budget, error) {
	return u.transition(ctx, p, id, access.ActionSubmit, entities.BudgetStatusEnviado, func(b *entities.Budget, now time.Time) error {
		if len(b.Suppliers) == 0 {
			return entities.NewValidationError().Add("suppliers", "at least one supplier is required before sending")
		}
		b.SendDate = &now
		return nil
	})
}

func (u *BudgetUseCase) Approve(ctx context.Context, p entities.Principal, id string) (entities.Budget, error) {
	return u.transition(ctx, p, id, access.ActionApprove, entities.BudgetStatusAprovado, func(b *entities.Budget, now time.Time) error {
		b.ApprovalDate = &now
		b.ApprovedBy = p.ID
		return nil
	})
}

func (u *BudgetUseCase) Reject(ctx context.Context, p entities.Principal, id string) (entities.Budget, error) {
	return u.transition(ctx, p, id, access.ActionReject, entities.BudgetStatusRejeitado, func(b *entities.Budget, now time.Time) error {
		return nil
	})
}

func (u *BudgetUseCase) Delete(ctx context.Context, p entities.Principal, id string) (entities.Budget, error) {
	return u.transition(ctx, p, id, access.ActionDelete, entities.BudgetStatusExcluido, func(b *entities.Budget, now time.Time) error {
		b.DeletionDate = &now
		return nil
	})
}

// transition validates the lifecycle move before touching any field, then
// applies the side effects, recomputes totals and persists in one write.
func (u *BudgetUseCase) transition(
	ctx context.Context,
	p entities.Principal,
	id string,
	action access.Action,
	to entities.BudgetStatus,
	sideEffects func(b *entities.Budget, now time.Time) error,
) (entities.Budget, error) {
	if err := access.Authorize(p, action); err != nil {
		return entities.Budget{}, err
	}

	b, err := u.load(ctx, id)
	if err != nil {
		return entities.Budget{}, err
	}
	if !b.Status.CanTransitionTo(to) {
		return entities.Budget{}, &entities.InvalidTransitionError{From: b.Status, To: to}
	}

	now := u.now()
	if err := sideEffects(&b, now); err != nil {
		return entities.Budget{}, err
	}

	b.Status = to
	b.UpdatedBy = p.ID
	b.UpdatedAt = now
	pricing.Apply(&b)
	return u.persist(ctx, b)
}

// persist writes the budget back with its version guard. A zero-value result
// means the item vanished between the load and the write; that is a
// not-found, never a silent success.
func (u *BudgetUseCase) persist(ctx context.Context, b entities.Budget) (entities.Budget, error) {
	updated, err := u.repo.Update(ctx, b, b.Version)
	if err != nil {
		return entities.Budget{}, err
	}
	if updated.ID == "" {
		return entities.Budget{}, ErrBudgetNotFound
	}
	return updated, nil
}

func (u *BudgetUseCase) load(ctx context.Context, id string) (entities.Budget, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Budget{}, ErrInvalidBudgetID
	}
	b, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Budget{}, err
	}
	if b.ID == "" {
		return entities.Budget{}, ErrBudgetNotFound
	}
	return b, nil
}

func (u *BudgetUseCase) stamp(b *entities.Budget, p entities.Principal) {
	b.UpdatedBy = p.ID
	b.UpdatedAt = u.now()
}

func validateBudget(b *entities.Budget) error {
	v := entities.NewValidationError()
	if b.BudgetNumber == "" {
		v.Add("budget_number", "required")
	}
	if strings.TrimSpace(b.Client) == "" {
		v.Add("client", "required")
	}
	if strings.TrimSpace(b.UF) == "" {
		v.Add("uf", "required")
	}
	if strings.TrimSpace(b.City) == "" {
		v.Add("city", "required")
	}
	if strings.TrimSpace(b.Route) == "" {
		v.Add("route", "required")
	}
	if strings.TrimSpace(b.RouteID) == "" {
		v.Add("route_id", "required")
	}
	if !b.BillingType.Valid() {
		v.Add("billing_type", "must be one of por_km, por_hora, por_diaria, por_mes, preco_fixo")
	}
	if strings.TrimSpace(b.VehicleType) == "" {
		v.Add("vehicle_type", "required")
	}
	if strings.TrimSpace(b.Frequency) == "" {
		v.Add("frequency", "required")
	}
	if b.RequestDate.IsZero() {
		v.Add("request_date", "required")
	}
	if b.FixedPrice.IsNegative() {
		v.Add("fixed_price", "must not be negative")
	}
	if !percentInRange(b.Margins.ProfitPercentage) {
		v.Add("profit_percentage", "must be between 0 and 100")
	}
	if !percentInRange(b.Margins.DiscountPercentage) {
		v.Add("discount_percentage", "must be between 0 and 100")
	}
	for _, s := range b.Suppliers {
		if err := validateSupplier(&s); err != nil {
			var sv *entities.ValidationError
			if errors.As(err, &sv) {
				for field, msg := range sv.Fields {
					v.Add("suppliers."+field, msg)
				}
			}
		}
	}
	if v.HasErrors() {
		return v
	}
	return nil
}

func validateSupplier(s *entities.Supplier) error {
	v := entities.NewValidationError()
	if strings.TrimSpace(s.Name) == "" {
		v.Add("name", "required")
	}
	if !pkg.ValidCNPJ(s.CNPJ) {
		v.Add("cnpj", "must contain exactly 14 digits")
	}
	if !s.ProposedValue.IsPositive() {
		v.Add("proposed_value", "must be greater than zero")
	}
	if !s.Category.Valid() {
		v.Add("category", "must be one of motorista, veiculo, combustivel, manutencao")
	}
	if v.HasErrors() {
		return v
	}
	return nil
}

func percentInRange(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100))
}

func applyPatch(b *entities.Budget, patch entities.BudgetPatch) {
	if patch.RequestDate != nil {
		b.RequestDate = *patch.RequestDate
	}
	if patch.Client != nil {
		b.Client = *patch.Client
	}
	if patch.UF != nil {
		b.UF = *patch.UF
	}
	if patch.City != nil {
		b.City = *patch.City
	}
	if patch.Route != nil {
		b.Route = *patch.Route
	}
	if patch.RouteID != nil {
		b.RouteID = *patch.RouteID
	}
	if patch.BillingType != nil {
		b.BillingType = *patch.BillingType
	}
	if patch.VehicleType != nil {
		b.VehicleType = *patch.VehicleType
	}
	if patch.Frequency != nil {
		b.Frequency = *patch.Frequency
	}
	if patch.ApproximateTime != nil {
		b.ApproximateTime = *patch.ApproximateTime
	}
	if patch.FixedPrice != nil {
		b.FixedPrice = *patch.FixedPrice
	}
	if patch.StartDate != nil {
		b.StartDate = patch.StartDate
	}
	if patch.DasaValidation != nil {
		b.DasaValidation = *patch.DasaValidation
	}
	if patch.BdgInclusion != nil {
		b.BdgInclusion = *patch.BdgInclusion
	}
	if patch.Costs != nil {
		b.Costs = *patch.Costs
	}
	if patch.VariableCosts != nil {
		b.VariableCosts = patch.VariableCosts
	}
	if patch.ProfitPercentage != nil {
		b.Margins.ProfitPercentage = *patch.ProfitPercentage
	}
	if patch.DiscountPercentage != nil {
		b.Margins.DiscountPercentage = *patch.DiscountPercentage
	}
}
