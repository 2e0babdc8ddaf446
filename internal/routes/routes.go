package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/analyst"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/bootstrap"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/handlers"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/middleware"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/monitoring"
	ucDashboard "github.com/BruksfildServices01/kingdom-dashboard/internal/usecase/dashboard"
)

func RegisterRoutes(r *gin.Engine, app *bootstrap.App) {
	cfg := app.Config

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.Recovery(app.Logger))
	r.Use(middleware.RequestLogger(app.Logger.Named("http")))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	getView := ucDashboard.NewGetView(app.Data)
	getFilters := ucDashboard.NewGetFilters(app.Data)
	getDashboard := ucDashboard.NewGetDashboard(app.Data)
	renderChart := ucDashboard.NewRenderChart(app.Data)
	exportView := ucDashboard.NewExportView(app.Data, app.Audit, cfg.Timezone)
	getTable := ucDashboard.NewGetTable(app.Data)
	listProducts := ucDashboard.NewListProducts(app.Data)
	refresh := ucDashboard.NewRefreshData(app.Data, app.Audit, app.Logger)

	askAnalyst := ucDashboard.NewAskAnalyst(app.Data, analyst.New(app.Narrator), app.Audit)
	draftCampaign := ucDashboard.NewDraftCampaign(app.Data, app.Narrator)
	generateImage := ucDashboard.NewGenerateImage(app.Narrator)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(cfg, app.Audit)

	viewHandler := handlers.NewViewHandler(
		getView,
		getFilters,
		getDashboard,
		renderChart,
		exportView,
		getTable,
		listProducts,
		refresh,
	)

	reportHandler := handlers.NewReportHandler(app.GenerateReport())

	assistantHandler := handlers.NewAssistantHandler(
		askAnalyst,
		draftCampaign,
		generateImage,
	)

	marketHandler := handlers.NewMarketHandler(app.Market)
	diagnosticsHandler := handlers.NewDiagnosticsHandler(app.Diagnostics)

	var auditLister handlers.AuditLister
	if app.AuditRepo != nil {
		auditLister = app.AuditRepo
	}
	auditLogsHandler := handlers.NewAuditLogsHandler(auditLister)

	// ======================================================
	// 🌐 PUBLIC
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(monitoring.Handler()))

	api := r.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	// ======================================================
	// 🔐 CONSOLE
	// ======================================================
	console := api.Group("")
	console.Use(middleware.AuthMiddleware(cfg))

	console.GET("/me", authHandler.Me)

	console.GET("/view", viewHandler.View)
	console.GET("/view.xlsx", viewHandler.ExportXLSX)
	console.GET("/dashboard", viewHandler.Dashboard)
	console.GET("/filters", viewHandler.Filters)
	console.GET("/charts", viewHandler.Charts)
	console.GET("/charts/:name", viewHandler.Chart)
	console.GET("/tables/:entity", viewHandler.Table)
	console.GET("/products", viewHandler.Products)
	console.POST("/data/refresh", viewHandler.Refresh)

	console.POST("/reports", reportHandler.Create)

	console.POST("/assistant/analyst", assistantHandler.Analyst)
	console.POST("/assistant/campaign", assistantHandler.Campaign)
	console.POST("/assistant/image", assistantHandler.Image)

	console.GET("/market/datasets", marketHandler.List)
	console.GET("/market/datasets/:key", marketHandler.Get)

	console.GET("/diagnostics", diagnosticsHandler.Run)
	console.GET("/audit-logs", auditLogsHandler.List)
}
