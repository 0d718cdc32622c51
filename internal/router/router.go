// Package router builds the HTTP route table shared by cmd/api and the end-to-end tests.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "gotocard/internal/docs" // Import swagger docs
	"gotocard/internal/handlers"
	"gotocard/internal/middleware"
	"gotocard/internal/services"
)

// Services groups the business services the routes are served by.
type Services struct {
	Users           services.UserServicer
	Categories      services.CategoryServicer
	Cards           services.CardServicer
	Spending        services.SpendingServicer
	Recommendations services.RecommendationServicer
}

// NewServices wires the gorm-backed services over db.
func NewServices(db *gorm.DB, opts services.RecommendationOptions) (Services, error) {
	recommendations, err := services.NewRecommendationService(services.NewRecommendationStore(db), opts)
	if err != nil {
		return Services{}, err
	}
	return Services{
		Users:           services.NewUserService(db),
		Categories:      services.NewCategoryService(db),
		Cards:           services.NewCardService(db),
		Spending:        services.NewSpendingService(db),
		Recommendations: recommendations,
	}, nil
}

// Options configures the cross-cutting parts of the router.
type Options struct {
	PipelineAPIKey string
	// CORSOrigins lists allowed browser origins. "*" allows any.
	CORSOrigins []string
	Swagger     bool
}

// New builds the gin engine with every route mounted.
func New(svc Services, opts Options) *gin.Engine {
	userHandler := handlers.NewUserHandler(svc.Users)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	cardHandler := handlers.NewCardHandler(svc.Cards)
	spendingHandler := handlers.NewSpendingHandler(svc.Spending)
	recommendationHandler := handlers.NewRecommendationHandler(svc.Recommendations)
	pipelineHandler := handlers.NewPipelineHandler(svc.Cards, svc.Users)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors(opts.CORSOrigins))

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	users := v1.Group("/users")
	users.POST("", userHandler.CreateUser)
	users.GET("", userHandler.ListUsers)
	users.GET("/:id", userHandler.GetUser)
	users.PUT("/:id", userHandler.UpdateUser)

	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)

	cards := v1.Group("/cards")
	cards.GET("", cardHandler.ListCards)
	cards.GET("/:id", cardHandler.GetCard)

	spending := v1.Group("/spending/users/:userId")
	spending.POST("", spendingHandler.AddSpending)
	spending.GET("", spendingHandler.ListSpending)
	spending.GET("/summary", spendingHandler.GetSummary)
	spending.DELETE("/:id", spendingHandler.DeleteSpending)

	recommendations := v1.Group("/recommendations/users/:userId")
	recommendations.POST("/generate", recommendationHandler.Generate)
	recommendations.GET("", recommendationHandler.GetRecommendations)
	recommendations.GET("/categories/:categoryId", recommendationHandler.GetByCategory)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKey))
	pipeline.POST("/cards", pipelineHandler.ImportCard)
	pipeline.GET("/users", pipelineHandler.ListUserIDs)

	return router
}

func cors(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowed["*"]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
