package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opengive/donation-ledger/internal/api/handler"
	"github.com/opengive/donation-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	verifier middleware.TokenVerifier,
	ngoHandler *handler.NGOHandler,
	transactionHandler *handler.TransactionHandler,
	userHandler *handler.UserHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	authRequired := middleware.Auth(verifier)

	api := r.Group("/api")
	{
		ngos := api.Group("/ngos")
		{
			ngos.GET("/", ngoHandler.List)
			ngos.GET("/:ngo_id/", ngoHandler.GetByID)
			ngos.GET("/:ngo_id/incoming/", ngoHandler.Incoming)
			ngos.GET("/:ngo_id/outgoing/", ngoHandler.Outgoing)
			ngos.POST("/:ngo_id/donate/", authRequired, ngoHandler.Donate)
			ngos.POST("/:ngo_id/outgoing/", authRequired, ngoHandler.SubmitExpense)
			ngos.POST("/admin/", authRequired, ngoHandler.Create)
			ngos.PUT("/admin/:ngo_id/", authRequired, ngoHandler.Update)
		}

		transactions := api.Group("/transactions")
		{
			transactions.POST("/create-order/:ngo_id/", authRequired, transactionHandler.CreateOrder)
			// The checkout callback authenticates itself: the gateway
			// signature is the credential.
			transactions.POST("/payment/verify/", transactionHandler.VerifyPayment)
			transactions.GET("/list/", transactionHandler.List)
			transactions.GET("/:id/", transactionHandler.GetByID)
		}

		users := api.Group("/users")
		{
			users.POST("/register/", userHandler.Register)
			users.POST("/login/", userHandler.Login)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
