package routes

import (
	"context"
	"log"
	"strconv"

	_ "vitta_logistica/docs" // This will be auto-generated
	"vitta_logistica/internal/adapter/http/handlers"
	"vitta_logistica/internal/adapter/http/middleware"
	repository2 "vitta_logistica/internal/adapter/persistence/repository"
	appconfig "vitta_logistica/internal/infrastructure/config"
	"vitta_logistica/internal/infrastructure/database"
	"vitta_logistica/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

var router = gin.New()

// Run will start the server
func Run() {
	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	setMiddlewares(logger)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes(cfg, logger)

	if err := router.Run(":" + strconv.Itoa(cfg.Port)); err != nil {
		logger.Fatal("Failed to startup the application", zap.Error(err))
	}
}

func getRoutes(cfg *appconfig.Config, logger *zap.Logger) {
	ddb, err := database.ConnectDynamoDB(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to connect to DynamoDB", zap.Error(err))
	}

	budgetRepo := repository2.NewBudgetDynamoRepository(ddb, cfg.BudgetsTable)
	budgetUseCase := usecase.NewBudgetUseCase(budgetRepo)
	budgetHandler := handlers.NewBudgetHandler(budgetUseCase)

	v1 := router.Group("/v1")
	addPingRoutes(v1)

	authenticated := v1.Group("")
	authenticated.Use(middleware.Auth([]byte(cfg.JWTSecret)))
	addBudgetRoutes(authenticated, budgetHandler)
}

func setMiddlewares(logger *zap.Logger) {
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Recovered from panic", zap.Any("panic", recovered))
		c.AbortWithStatus(500)
	}))
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}
