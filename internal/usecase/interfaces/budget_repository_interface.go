package interfaces

import (
	"context"
	"errors"

	"vitta_logistica/internal/domain/entities"
)

// Errors that belong to the repository contract itself: implementations must
// return exactly these so callers can discriminate without knowing the store.
var (
	// ErrDuplicateBudgetNumber is returned by Create when the budget number
	// is already taken.
	ErrDuplicateBudgetNumber = errors.New("budget number already exists")
	// ErrVersionConflict is returned by Update when the stored version no
	// longer matches the expected one. The caller reloads and retries.
	ErrVersionConflict = errors.New("budget was modified concurrently")
)

// IBudgetRepository abstracts DynamoDB persistence for Budget.
//
// Conventions (same as the rest of this codebase):
//   - Lookups return a zero-value Budget, not an error, when nothing matches.
//   - Every successful Update bumps Version by one.

type IBudgetRepository interface {
	Create(ctx context.Context, b entities.Budget) (entities.Budget, error)
	GetByID(ctx context.Context, id string) (entities.Budget, error)
	GetByNumber(ctx context.Context, number string) (entities.Budget, error)
	List(ctx context.Context, f entities.BudgetFilter) ([]entities.Budget, error)
	Update(ctx context.Context, b entities.Budget, expectedVersion int64) (entities.Budget, error)
}
