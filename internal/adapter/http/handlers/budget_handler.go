package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	request "vitta_logistica/internal/adapter/http/dto/request"
	response "vitta_logistica/internal/adapter/http/dto/response"
	"vitta_logistica/internal/adapter/http/middleware"
	"vitta_logistica/internal/domain/access"
	"vitta_logistica/internal/domain/entities"
	"vitta_logistica/internal/usecase"
	"vitta_logistica/internal/usecase/interfaces"
	"vitta_logistica/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidBudgetPayload = pkg.NewDomainErrorSimple("INVALID_BUDGET_INPUT", "Invalid budget payload", http.StatusBadRequest)
	errInvalidBudgetFilter  = pkg.NewDomainErrorSimple("INVALID_BUDGET_FILTER", "Invalid budget filter", http.StatusBadRequest)
	errMissingPrincipal     = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Missing or invalid credentials", http.StatusUnauthorized)
)

// BudgetHandler handles HTTP requests for logistics budgets.
type BudgetHandler struct {
	usecase usecase.IBudgetUseCase
}

func NewBudgetHandler(uc usecase.IBudgetUseCase) *BudgetHandler {
	return &BudgetHandler{usecase: uc}
}

// CreateBudget accepts a full budget payload and persists it as a draft.
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(errMissingPrincipal.HTTPStatus, errMissingPrincipal.ToHTTPError())
		return
	}

	var payload request.CreateBudgetRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidBudgetPayload.HTTPStatus, errInvalidBudgetPayload.ToHTTPError())
		return
	}

	budget, err := h.usecase.Create(c.Request.Context(), p, payload.ToEntity())
	if err != nil {
		appErr := mapBudgetError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.FromBudget(budget))
}

func (h *BudgetHandler) GetBudget(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(errMissingPrincipal.HTTPStatus, errMissingPrincipal.ToHTTPError())
		return
	}

	budget, err := h.usecase.GetByID(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		appErr := mapBudgetError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromBudget(budget))
}

func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(errMissingPrincipal.HTTPStatus, errMissingPrincipal.ToHTTPError())
		return
	}

	filter, err := parseBudgetFilter(c)
	if err != nil {
		c.JSON(errInvalidBudgetFilter.HTTPStatus, errInvalidBudgetFilter.ToHTTPError())
		return
	}

	budgets, err := h.usecase.List(c.Request.Context(), p, filter)
	if err != nil {
		appErr := mapBudgetError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromBudgets(budgets))
}

// UpdateBudget applies a partial update and recomputes derived pricing.
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(errMissingPrincipal.HTTPStatus, errMissingPrincipal.ToHTTPError())
		return
	}

	var payload request.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidBudgetPayload.HTTPStatus, errInvalidBudgetPayload.ToHTTPError())
		return
	}

	budget, err := h.usecase.UpdateFields(c.Request.Context(), p, c.Param("id"), payload.ToPatch())
	if err != nil {
		appErr := mapBudgetError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromBudget(budget))
}

func (h *BudgetHandler) AddSupplier(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(errMissingPrincipal.HTTPStatus, errMissingPrincipal.ToHTTPError())
		return
	}

	var payload request.SupplierRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidBudgetPayload.HTTPStatus, errInvalidBudgetPayload.ToHTTPError())
		return
	}

	budget, err := h.usecase.AddSupplier(c.Request.Context(), p, c.Param("id"), payload.ToEntity())
	if err != nil {
		appErr := mapBudgetError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromBudget(budget))
}

func (h *BudgetHandler) RemoveSupplier(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(errMissingPrincipal.HTTPStatus, errMissingPrincipal.ToHTTPError())
		return
	}

	budget, err := h.usecase.RemoveSupplier(c.Request.Context(), p, c.Param("id"), c.Param("supplier_id"))
	if err != nil {
		appErr := mapBudgetError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromBudget(budget))
}

func (h *BudgetHandler) SubmitBudget(c *gin.Context) {
	h.patchBudgetStatus(c, h.usecase.Submit)
}

func (h *BudgetHandler) ApproveBudget(c *gin.Context) {
	h.patchBudgetStatus(c, h.usecase.Approve)
}

func (h *BudgetHandler) RejectBudget(c *gin.Context) {
	h.patchBudgetStatus(c, h.usecase.Reject)
}

func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	h.patchBudgetStatus(c, h.usecase.Delete)
}

func (h *BudgetHandler) patchBudgetStatus(
	c *gin.Context,
	transition func(ctx context.Context, p entities.Principal, id string) (entities.Budget, error),
) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(errMissingPrincipal.HTTPStatus, errMissingPrincipal.ToHTTPError())
		return
	}

	budget, err := transition(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		appErr := mapBudgetError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromBudget(budget))
}

func parseBudgetFilter(c *gin.Context) (entities.BudgetFilter, error) {
	filter := entities.BudgetFilter{
		Client:         c.Query("client"),
		UF:             c.Query("uf"),
		DasaValidation: c.Query("dasa_validation"),
	}

	if raw := c.Query("status"); raw != "" {
		status := entities.BudgetStatus(raw)
		if !status.Valid() {
			return entities.BudgetFilter{}, errors.New("unknown status")
		}
		filter.Status = status
	}

	if raw := c.Query("bdg_inclusion"); raw != "" {
		switch raw {
		case "true":
			v := true
			filter.BdgInclusion = &v
		case "false":
			v := false
			filter.BdgInclusion = &v
		default:
			return entities.BudgetFilter{}, errors.New("bdg_inclusion must be true or false")
		}
	}

	if raw := c.Query("request_date_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return entities.BudgetFilter{}, err
		}
		filter.RequestDateFrom = &t
	}
	if raw := c.Query("request_date_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return entities.BudgetFilter{}, err
		}
		filter.RequestDateTo = &t
	}

	return filter, nil
}

func mapBudgetError(err error) *pkg.AppError {
	var validationErr *entities.ValidationError
	var transitionErr *entities.InvalidTransitionError

	switch {
	case errors.As(err, &validationErr):
		return pkg.NewDomainErrorSimple("INVALID_BUDGET_INPUT", "Invalid budget payload", http.StatusBadRequest).
			WithFields(validationErr.Fields)
	case errors.Is(err, usecase.ErrInvalidBudgetID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, access.ErrAccessDenied):
		return pkg.NewDomainErrorSimple("ACCESS_DENIED", "Access denied", http.StatusForbidden)
	case errors.Is(err, usecase.ErrBudgetNotFound):
		return pkg.NewDomainErrorSimple("BUDGET_NOT_FOUND", "Budget not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrSupplierNotFound):
		return pkg.NewDomainErrorSimple("SUPPLIER_NOT_FOUND", "Supplier not found", http.StatusNotFound)
	case errors.Is(err, interfaces.ErrDuplicateBudgetNumber):
		return pkg.NewDomainErrorSimple("BUDGET_NUMBER_TAKEN", "Budget number already in use", http.StatusConflict)
	case errors.Is(err, interfaces.ErrVersionConflict):
		return pkg.NewDomainErrorSimple("BUDGET_CONFLICT", "Budget was modified concurrently", http.StatusConflict)
	case errors.As(err, &transitionErr):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", transitionErr.Error(), http.StatusUnprocessableEntity)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
