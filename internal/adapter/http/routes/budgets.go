package routes

import (
	"vitta_logistica/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathBudgets = "/budgets"
)

func addBudgetRoutes(rg *gin.RouterGroup, budgetHandler *handlers.BudgetHandler) {
	budgets := rg.Group(PathBudgets)
	{
		budgets.POST("", budgetHandler.CreateBudget)
		budgets.GET("", budgetHandler.ListBudgets)
		budgets.GET("/:id", budgetHandler.GetBudget)
		budgets.PUT("/:id", budgetHandler.UpdateBudget)
		budgets.DELETE("/:id", budgetHandler.DeleteBudget)

		// Transições de status do orçamento.
		budgets.POST("/:id/submit", budgetHandler.SubmitBudget)
		budgets.POST("/:id/approve", budgetHandler.ApproveBudget)
		budgets.POST("/:id/reject", budgetHandler.RejectBudget)

		budgets.POST("/:id/suppliers", budgetHandler.AddSupplier)
		budgets.DELETE("/:id/suppliers/:supplier_id", budgetHandler.RemoveSupplier)
	}
}
