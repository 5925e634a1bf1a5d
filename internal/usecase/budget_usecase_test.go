package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"vitta_logistica/internal/domain/access"
	"vitta_logistica/internal/domain/entities"
	"vitta_logistica/internal/usecase/interfaces"
	mock_interfaces "vitta_logistica/internal/usecase/interfaces/mocks"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

var (
	operador      = entities.Principal{ID: "user-op", Role: entities.RoleOperador}
	aprovador     = entities.Principal{ID: "user-ap", Role: entities.RoleAprovador}
	administrador = entities.Principal{ID: "user-adm", Role: entities.RoleAdministrador}
)

func validDraft() entities.Budget {
	return entities.Budget{
		ID:           "bgt-1",
		BudgetNumber: "ORC-2025-001",
		RequestDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Client:       "Hospital Central",
		UF:           "SP",
		City:         "São Paulo",
		Route:        "Centro - Zona Sul",
		RouteID:      "RT-12",
		BillingType:  entities.BillingTypePorKm,
		VehicleType:  "van",
		Frequency:    "diaria",
		Status:       entities.BudgetStatusRascunho,
		Costs: entities.CostBreakdown{
			TotalFuelCost: decimal.RequireFromString("1229.80"),
		},
		Margins: entities.Margins{
			ProfitPercentage: decimal.RequireFromString("68.7"),
		},
		Suppliers: []entities.Supplier{{
			ID:            "sup-1",
			Name:          "Transportes Silva",
			CNPJ:          "12345678000195",
			ProposedValue: decimal.RequireFromString("500"),
			Category:      entities.SupplierCategoryMotorista,
			Active:        true,
		}},
		Version: 3,
	}
}

func TestBudgetUseCase_Create(t *testing.T) {
	t.Run("unknown role denied", func(t *testing.T) {
		uc := NewBudgetUseCase(nil)
		_, err := uc.Create(context.Background(), entities.Principal{Role: "convidado"}, validDraft())
		if !errors.Is(err, access.ErrAccessDenied) {
			t.Fatalf("expected ErrAccessDenied, got %v", err)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		uc := NewBudgetUseCase(nil)
		b := validDraft()
		b.Client = ""
		b.UF = "  "
		_, err := uc.Create(context.Background(), operador, b)
		var v *entities.ValidationError
		if !errors.As(err, &v) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := v.Fields["client"]; !ok {
			t.Fatalf("expected client field error, got %v", v.Fields)
		}
		if _, ok := v.Fields["uf"]; !ok {
			t.Fatalf("expected uf field error, got %v", v.Fields)
		}
	})

	t.Run("supplier with short cnpj rejected", func(t *testing.T) {
		uc := NewBudgetUseCase(nil)
		b := validDraft()
		b.Suppliers[0].CNPJ = "1234567800019"
		_, err := uc.Create(context.Background(), operador, b)
		var v *entities.ValidationError
		if !errors.As(err, &v) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := v.Fields["suppliers.cnpj"]; !ok {
			t.Fatalf("expected suppliers.cnpj error, got %v", v.Fields)
		}
	})

	t.Run("duplicate budget number", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		repo.EXPECT().GetByNumber(gomock.Any(), "ORC-2025-001").Return(entities.Budget{ID: "existing"}, nil)

		_, err := uc.Create(context.Background(), operador, validDraft())
		if !errors.Is(err, interfaces.ErrDuplicateBudgetNumber) {
			t.Fatalf("expected ErrDuplicateBudgetNumber, got %v", err)
		}
	})

	t.Run("create success stamps and recomputes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		repo.EXPECT().GetByNumber(gomock.Any(), "ORC-2025-001").Return(entities.Budget{}, nil)
		repo.EXPECT().Create(gomock.Any(), gomock.AssignableToTypeOf(entities.Budget{})).DoAndReturn(
			func(_ context.Context, b entities.Budget) (entities.Budget, error) {
				if b.ID == "" || b.ID == "bgt-1" {
					t.Fatalf("expected a fresh id, got %q", b.ID)
				}
				if b.Status != entities.BudgetStatusRascunho {
					t.Fatalf("expected rascunho, got %s", b.Status)
				}
				if b.CreatedBy != "user-op" || b.UpdatedBy != "user-op" {
					t.Fatalf("unexpected audit stamps: %+v", b)
				}
				if b.Version != 1 {
					t.Fatalf("expected version 1, got %d", b.Version)
				}
				if b.Suppliers[0].ID == "sup-1" {
					t.Fatalf("expected supplier id to be reassigned")
				}
				if b.Margins.FinalValue.IsZero() {
					t.Fatalf("expected final value to be computed")
				}
				return b, nil
			},
		)

		res, err := uc.Create(context.Background(), operador, validDraft())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.CreatedAt.IsZero() || res.UpdatedAt.IsZero() {
			t.Fatalf("expected timestamps")
		}
	})
}

func TestBudgetUseCase_GetByID(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		uc := NewBudgetUseCase(nil)
		_, err := uc.GetByID(context.Background(), operador, "  ")
		if !errors.Is(err, ErrInvalidBudgetID) {
			t.Fatalf("expected ErrInvalidBudgetID, got %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(entities.Budget{}, nil)

		_, err := uc.GetByID(context.Background(), operador, "bgt-1")
		if !errors.Is(err, ErrBudgetNotFound) {
			t.Fatalf("expected ErrBudgetNotFound, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(validDraft(), nil)

		res, err := uc.GetByID(context.Background(), operador, " bgt-1 ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.BudgetNumber != "ORC-2025-001" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})
}

func TestBudgetUseCase_UpdateFields(t *testing.T) {
	t.Run("terminal status frozen", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		b := validDraft()
		b.Status = entities.BudgetStatusExcluido
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(b, nil)

		_, err := uc.UpdateFields(context.Background(), operador, "bgt-1", entities.BudgetPatch{})
		var it *entities.InvalidTransitionError
		if !errors.As(err, &it) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("patch applies and totals recompute", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		b := validDraft()
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(b, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.AssignableToTypeOf(entities.Budget{}), int64(3)).DoAndReturn(
			func(_ context.Context, upd entities.Budget, _ int64) (entities.Budget, error) {
				if !upd.Margins.ProfitPercentage.Equal(decimal.NewFromInt(10)) {
					t.Fatalf("expected profit 10, got %s", upd.Margins.ProfitPercentage)
				}
				// (1229.80 + 500) * 1.10 = 1902.78
				if !upd.Margins.FinalValue.Equal(decimal.RequireFromString("1902.78")) {
					t.Fatalf("expected final 1902.78, got %s", upd.Margins.FinalValue)
				}
				if upd.UpdatedBy != "user-ap" {
					t.Fatalf("expected updatedBy re-stamped, got %q", upd.UpdatedBy)
				}
				return upd, nil
			},
		)

		ten := decimal.NewFromInt(10)
		_, err := uc.UpdateFields(context.Background(), aprovador, "bgt-1", entities.BudgetPatch{ProfitPercentage: &ten})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("version conflict surfaces", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(validDraft(), nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).Return(entities.Budget{}, interfaces.ErrVersionConflict)

		_, err := uc.UpdateFields(context.Background(), operador, "bgt-1", entities.BudgetPatch{})
		if !errors.Is(err, interfaces.ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}
	})

	t.Run("budget deleted between load and write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(validDraft(), nil)
		// Zero-value result from the write means the item is gone.
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).Return(entities.Budget{}, nil)

		got, err := uc.UpdateFields(context.Background(), operador, "bgt-1", entities.BudgetPatch{})
		if !errors.Is(err, ErrBudgetNotFound) {
			t.Fatalf("expected ErrBudgetNotFound, got %v", err)
		}
		if got.ID != "" {
			t.Fatalf("expected zero-value budget, got %+v", got)
		}
	})
}

func TestBudgetUseCase_Suppliers(t *testing.T) {
	t.Run("add validates proposal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(validDraft(), nil)

		bad := entities.Supplier{Name: "X", CNPJ: "123", ProposedValue: decimal.Zero, Category: "frota"}
		_, err := uc.AddSupplier(context.Background(), operador, "bgt-1", bad)
		var v *entities.ValidationError
		if !errors.As(err, &v) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, f := range []string{"cnpj", "proposed_value", "category"} {
			if _, ok := v.Fields[f]; !ok {
				t.Fatalf("expected %s error, got %v", f, v.Fields)
			}
		}
	})

	t.Run("add appends active supplier and recomputes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		before := validDraft()
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(before, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).DoAndReturn(
			func(_ context.Context, upd entities.Budget, _ int64) (entities.Budget, error) {
				if len(upd.Suppliers) != 2 {
					t.Fatalf("expected 2 suppliers, got %d", len(upd.Suppliers))
				}
				added := upd.Suppliers[1]
				if added.ID == "" || !added.Active {
					t.Fatalf("expected active supplier with id, got %+v", added)
				}
				if added.CNPJ != "98765432000188" {
					t.Fatalf("expected normalized cnpj, got %q", added.CNPJ)
				}
				if !upd.Margins.FinalValue.GreaterThan(before.Margins.FinalValue) {
					t.Fatalf("expected final value to grow after new proposal")
				}
				return upd, nil
			},
		)

		s := entities.Supplier{
			Name:          "Frota Sul",
			CNPJ:          "98.765.432/0001-88",
			ProposedValue: decimal.RequireFromString("800"),
			Category:      entities.SupplierCategoryVeiculo,
		}
		_, err := uc.AddSupplier(context.Background(), operador, "bgt-1", s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("remove unknown supplier", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(validDraft(), nil)

		_, err := uc.RemoveSupplier(context.Background(), operador, "bgt-1", "sup-404")
		if !errors.Is(err, ErrSupplierNotFound) {
			t.Fatalf("expected ErrSupplierNotFound, got %v", err)
		}
	})

	t.Run("remove recomputes totals", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(validDraft(), nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).DoAndReturn(
			func(_ context.Context, upd entities.Budget, _ int64) (entities.Budget, error) {
				if len(upd.Suppliers) != 0 {
					t.Fatalf("expected supplier removed, got %d", len(upd.Suppliers))
				}
				// 1229.80 * 1.687 = 2074.6726
				if !upd.Margins.FinalValue.Equal(decimal.RequireFromString("2074.6726")) {
					t.Fatalf("expected final 2074.6726, got %s", upd.Margins.FinalValue)
				}
				return upd, nil
			},
		)

		_, err := uc.RemoveSupplier(context.Background(), operador, "bgt-1", "sup-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestBudgetUseCase_Lifecycle(t *testing.T) {
	t.Run("submit requires suppliers", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		b := validDraft()
		b.Suppliers = nil
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(b, nil)

		_, err := uc.Submit(context.Background(), operador, "bgt-1")
		var v *entities.ValidationError
		if !errors.As(err, &v) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("submit stamps send date", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(validDraft(), nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).DoAndReturn(
			func(_ context.Context, upd entities.Budget, _ int64) (entities.Budget, error) {
				if upd.Status != entities.BudgetStatusEnviado {
					t.Fatalf("expected enviado, got %s", upd.Status)
				}
				if upd.SendDate == nil {
					t.Fatalf("expected send date stamped")
				}
				return upd, nil
			},
		)

		_, err := uc.Submit(context.Background(), operador, "bgt-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("operador cannot approve", func(t *testing.T) {
		uc := NewBudgetUseCase(nil)
		_, err := uc.Approve(context.Background(), operador, "bgt-1")
		if !errors.Is(err, access.ErrAccessDenied) {
			t.Fatalf("expected ErrAccessDenied, got %v", err)
		}
	})

	t.Run("approve from draft is invalid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(validDraft(), nil)

		_, err := uc.Approve(context.Background(), aprovador, "bgt-1")
		var it *entities.InvalidTransitionError
		if !errors.As(err, &it) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
		if it.From != entities.BudgetStatusRascunho || it.To != entities.BudgetStatusAprovado {
			t.Fatalf("unexpected transition context: %+v", it)
		}
	})

	t.Run("approve stamps approver", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		b := validDraft()
		b.Status = entities.BudgetStatusEnviado
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(b, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).DoAndReturn(
			func(_ context.Context, upd entities.Budget, _ int64) (entities.Budget, error) {
				if upd.Status != entities.BudgetStatusAprovado {
					t.Fatalf("expected aprovado, got %s", upd.Status)
				}
				if upd.ApprovalDate == nil || upd.ApprovedBy != "user-ap" {
					t.Fatalf("expected approval stamps, got %+v", upd)
				}
				return upd, nil
			},
		)

		_, err := uc.Approve(context.Background(), aprovador, "bgt-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("reject from sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		b := validDraft()
		b.Status = entities.BudgetStatusEnviado
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(b, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).DoAndReturn(
			func(_ context.Context, upd entities.Budget, _ int64) (entities.Budget, error) {
				if upd.Status != entities.BudgetStatusRejeitado {
					t.Fatalf("expected rejeitado, got %s", upd.Status)
				}
				return upd, nil
			},
		)

		_, err := uc.Reject(context.Background(), aprovador, "bgt-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("only administrador deletes", func(t *testing.T) {
		uc := NewBudgetUseCase(nil)
		for _, p := range []entities.Principal{operador, aprovador} {
			if _, err := uc.Delete(context.Background(), p, "bgt-1"); !errors.Is(err, access.ErrAccessDenied) {
				t.Fatalf("expected ErrAccessDenied for %s, got %v", p.Role, err)
			}
		}
	})

	t.Run("delete is a soft transition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		b := validDraft()
		b.Status = entities.BudgetStatusAprovado
		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(b, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).DoAndReturn(
			func(_ context.Context, upd entities.Budget, _ int64) (entities.Budget, error) {
				if upd.Status != entities.BudgetStatusExcluido {
					t.Fatalf("expected excluido, got %s", upd.Status)
				}
				if upd.DeletionDate == nil {
					t.Fatalf("expected deletion date stamped")
				}
				return upd, nil
			},
		)

		_, err := uc.Delete(context.Background(), administrador, "bgt-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("submit of a budget deleted mid-flight is not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
		uc := NewBudgetUseCase(repo)

		repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(validDraft(), nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), int64(3)).Return(entities.Budget{}, nil)

		_, err := uc.Submit(context.Background(), operador, "bgt-1")
		if !errors.Is(err, ErrBudgetNotFound) {
			t.Fatalf("expected ErrBudgetNotFound, got %v", err)
		}
	})

	t.Run("terminal states refuse every transition", func(t *testing.T) {
		for _, status := range []entities.BudgetStatus{entities.BudgetStatusRejeitado, entities.BudgetStatusExcluido} {
			ctrl := gomock.NewController(t)
			repo := mock_interfaces.NewMockIBudgetRepository(ctrl)
			uc := NewBudgetUseCase(repo)

			b := validDraft()
			b.Status = status
			repo.EXPECT().GetByID(gomock.Any(), "bgt-1").Return(b, nil).AnyTimes()

			ops := []func() error{
				func() error { _, err := uc.Submit(context.Background(), administrador, "bgt-1"); return err },
				func() error { _, err := uc.Approve(context.Background(), administrador, "bgt-1"); return err },
				func() error { _, err := uc.Reject(context.Background(), administrador, "bgt-1"); return err },
				func() error { _, err := uc.Delete(context.Background(), administrador, "bgt-1"); return err },
			}
			for _, op := range ops {
				var it *entities.InvalidTransitionError
				if err := op(); !errors.As(err, &it) {
					t.Fatalf("expected InvalidTransitionError from %s, got %v", status, err)
				}
			}
			ctrl.Finish()
		}
	})
}
