package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/salonos/salonos-backoffice/internal/config"
	"github.com/salonos/salonos-backoffice/internal/http/handler"
	httpmiddleware "github.com/salonos/salonos-backoffice/internal/http/middleware"
	"github.com/salonos/salonos-backoffice/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(
	cfg config.Config,
	intakeHandler *handler.IntakeHandler,
	adminHandler *handler.AdminHandler,
	assetHandler *handler.AssetHandler,
	adminAuth *httpmiddleware.AdminAuth,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	api := r.Group("/api")
	{
		api.POST("/intake", intakeHandler.Create)

		staging := api.Group("/staging")
		{
			staging.GET("/key", assetHandler.NewKey)
			staging.POST("", assetHandler.Record)
			staging.GET("/:key", assetHandler.Get)
		}

		admin := api.Group("/admin", adminAuth.Require)
		{
			admin.GET("/requests", adminHandler.ListRequests)
			admin.GET("/requests/:id", adminHandler.GetRequest)
			admin.PATCH("/requests/:id/status", adminHandler.UpdateRequestStatus)
			admin.POST("/requests/:id/payment-confirmed", adminHandler.ConfirmPayment)
			admin.POST("/requests/:id/provision", adminHandler.Provision)

			admin.PATCH("/accounts/:id/status", adminHandler.UpdateAccountStatus)
			admin.GET("/stats", adminHandler.Stats)
			admin.GET("/tenants/stale", adminHandler.StaleTenants)

			admin.DELETE("/staging/:key", assetHandler.Reject)
		}
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
