package restapi

import (
	"net/http"

	"vault_dashboard/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures and returns the Gin router for the dashboard API.
func SetupRouter(cfg *config.Config, vaultHandler *VaultHandler) *gin.Engine {
	router := gin.Default() // standard Logger and Recovery middleware

	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.Limiter.RequestsPerSecond, cfg.Limiter.Burst))
	v1.Use(MetricsMiddleware())
	{
		v1.GET("/factory/address", vaultHandler.GetFactoryAddressHandler)

		vaults := v1.Group("/vaults/:address")
		{
			vaults.GET("", vaultHandler.GetVaultInfoHandler)
			vaults.GET("/apy", vaultHandler.GetVaultAPYHandler)
			vaults.GET("/history", vaultHandler.GetVaultHistoryHandler)
			vaults.GET("/report", vaultHandler.GetVaultReportHandler)
			vaults.GET("/balance", vaultHandler.GetVaultBalanceHandler)

			// Stateful dashboard view: analyze seeds it, refresh replaces only
			// the history portion under request sequencing.
			vaults.POST("/analyze", vaultHandler.AnalyzeVaultHandler)
			vaults.POST("/history/refresh", vaultHandler.RefreshHistoryHandler)
			vaults.GET("/view", vaultHandler.GetViewHandler)
		}
	}

	return router
}
