package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/server/handlers"
)

// Handlers collects every HTTP adapter the router mounts.
type Handlers struct {
	Settings *handlers.SettingsHandler
	Masters  *handlers.MastersHandler
	Loads    *handlers.LoadsHandler
	Payments *handlers.PaymentsHandler
	Reports  *handlers.ReportsHandler
	Export   *handlers.ExportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	api.GET("/settings", h.Settings.Get)
	api.PUT("/settings", h.Settings.Put)

	farmers := api.Group("/farmers")
	farmers.POST("", h.Masters.CreateFarmer)
	farmers.GET("", h.Masters.ListFarmers)
	farmers.GET("/:id", h.Masters.GetFarmer)
	farmers.PUT("/:id", h.Masters.UpdateFarmer)
	farmers.DELETE("/:id", h.Masters.DeleteFarmer)

	mills := api.Group("/mills")
	mills.POST("", h.Masters.CreateMill)
	mills.GET("", h.Masters.ListMills)
	mills.GET("/:id", h.Masters.GetMill)
	mills.PUT("/:id", h.Masters.UpdateMill)
	mills.DELETE("/:id", h.Masters.DeleteMill)

	vehicles := api.Group("/vehicles")
	vehicles.POST("", h.Masters.CreateVehicle)
	vehicles.GET("", h.Masters.ListVehicles)
	vehicles.GET("/:id", h.Masters.GetVehicle)
	vehicles.PUT("/:id", h.Masters.UpdateVehicle)
	vehicles.DELETE("/:id", h.Masters.DeleteVehicle)

	loads := api.Group("/loads")
	loads.POST("", h.Loads.Create)
	loads.POST("/preview", h.Loads.Preview)
	loads.GET("", h.Loads.List)
	loads.GET("/number/:number", h.Loads.GetByNumber)
	loads.GET("/:id", h.Loads.Get)
	loads.PUT("/:id", h.Loads.Update)
	loads.DELETE("/:id", h.Loads.Delete)
	loads.GET("/:id/invoice", h.Loads.Invoice)
	loads.GET("/:id/profit", h.Loads.Profit)
	loads.GET("/:id/history", h.Loads.History)
	loads.GET("/:id/credit-cut", h.Payments.PreviewCreditCut)

	payments := api.Group("/payments")
	payments.POST("/mills", h.Payments.CreateMillPayment)
	payments.GET("/mills", h.Payments.ListMillPayments)
	payments.POST("/farmers", h.Payments.CreateFarmerPayout)
	payments.GET("/farmers", h.Payments.ListFarmerPayouts)
	payments.POST("/advances", h.Payments.CreateAdvance)
	payments.GET("/advances", h.Payments.ListAdvances)

	reports := api.Group("/reports")
	reports.GET("/daily", h.Reports.DailySummary)
	reports.GET("/outstanding/mills", h.Reports.OutstandingMills)
	reports.GET("/outstanding/farmers", h.Reports.OutstandingFarmers)
	reports.GET("/profit", h.Reports.Profit)

	export := api.Group("/export")
	export.GET("/loads.csv", h.Export.LoadsCSV)
	export.GET("/loads.json", h.Export.LoadsJSON)
	export.GET("/loads.xlsx", h.Export.LoadsXLSX)
	export.GET("/backup.json", h.Export.Backup)
	export.POST("/sheet", h.Export.PushToSheet)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
