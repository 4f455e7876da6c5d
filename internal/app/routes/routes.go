package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "lifeline-http-service/docs"
	"lifeline-http-service/internal/app/controllers"
	"lifeline-http-service/internal/app/middleware"
	"lifeline-http-service/internal/domain/services"
	"lifeline-http-service/internal/domain/services/container"
	"lifeline-http-service/internal/infrastructure/config"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(serviceContainer *container.ServiceContainer, cfg *config.Config) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件。前端是随应用分发的本地页面，放开跨域。
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 设置正确的Content-Type，确保UTF-8编码
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})

	// 初始化中间件
	gate := serviceContainer.GetService("gate").(services.InterfaceGateService)
	middleware.InitAuthMiddleware(cfg, gate)

	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由。
// 查找和事故报告要在锁屏状态下可用，门禁只保护管理操作。
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	api.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	health := controllers.NewHealthCheckController()
	api.GET("/ping", health.Ping)
	api.GET("/health", health.Ping) // 兼容Docker健康检查

	// 门禁路由。登录接口单独加路径限流，给密码试错多一道外围闸门。
	gateGroup := api.Group("/gate")
	gateGroup.GET("/status", controllers.HandleGateFunc(container, "getStatus"))
	gateGroup.POST("/setup", controllers.HandleGateFunc(container, "setupPassword"))
	gateGroup.POST("/login", middleware.PathRateLimiter(2, 5), controllers.HandleGateFunc(container, "login"))

	// 查找路由
	lookupGroup := api.Group("/lookup")
	lookupGroup.POST("/extract", controllers.HandleLookupFunc(container, "extractIdentifier"))
	lookupGroup.POST("/staff", controllers.HandleLookupFunc(container, "resolveStaff"))
	lookupGroup.POST("/location", controllers.HandleLookupFunc(container, "resolveLocation"))

	// 主数据的公开只读部分（报告画面需要）
	api.GET("/locations", middleware.Cache(30*time.Second), controllers.HandleLocationFunc(container, "getLocations"))
	api.GET("/situations", middleware.Cache(30*time.Second), controllers.HandleSituationFunc(container, "getSituations"))
	api.GET("/body-parts", middleware.Cache(5*time.Minute), controllers.HandleSituationFunc(container, "getBodyParts"))
	api.GET("/zones", middleware.Cache(5*time.Minute), controllers.HandleLocationFunc(container, "getZones"))
	api.POST("/zones/classify", controllers.HandleLocationFunc(container, "classifyPoint"))

	// 事故报告路由
	reportGroup := api.Group("/reports")
	reportGroup.POST("", controllers.HandleReportFunc(container, "createReport"))
	reportGroup.GET("/:id", controllers.HandleReportFunc(container, "getReport"))
	reportGroup.POST("/:id/restart", controllers.HandleReportFunc(container, "restartReport"))
	reportGroup.DELETE("/:id", controllers.HandleReportFunc(container, "discardReport"))
	reportGroup.PUT("/:id/triage", controllers.HandleReportFunc(container, "setTriage"))
	reportGroup.PUT("/:id/location", controllers.HandleReportFunc(container, "setLocation"))
	reportGroup.PUT("/:id/accident", controllers.HandleReportFunc(container, "setAccident"))
	reportGroup.PUT("/:id/victim", controllers.HandleReportFunc(container, "setVictim"))
	reportGroup.POST("/:id/review", controllers.HandleReportFunc(container, "review"))
	reportGroup.POST("/:id/emergency-step", controllers.HandleReportFunc(container, "confirmEmergencyStep"))
	reportGroup.GET("/:id/preview", controllers.HandleReportFunc(container, "getPreview"))
	reportGroup.POST("/:id/sent", controllers.HandleReportFunc(container, "markSent"))
	reportGroup.POST("/:id/copied", controllers.HandleReportFunc(container, "markCopied"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	auth := api.Group("/")
	auth.Use(middleware.AuthenticateAdmin())

	// 添加通用限流中间件 - 每秒30个请求，最多突发50个请求
	auth.Use(middleware.IPRateLimiter(30, 50))

	// 管理操作成功后清掉公开接口的响应缓存，避免报告画面拿到旧主数据
	auth.Use(func(c *gin.Context) {
		c.Next()
		if c.Request.Method != http.MethodGet && c.Writer.Status() < 400 {
			middleware.PurgeCache()
		}
	})

	// 门禁管理路由
	auth.POST("/gate/logout", controllers.HandleGateFunc(container, "logout"))
	auth.PUT("/gate/password", controllers.HandleGateFunc(container, "changePassword"))
	auth.POST("/gate/heartbeat", controllers.HandleGateFunc(container, "heartbeat"))

	// 职员名簿路由
	staffGroup := auth.Group("/staffs")
	staffGroup.GET("", controllers.HandleStaffFunc(container, "getStaffs"))
	staffGroup.GET("/:id", controllers.HandleStaffFunc(container, "getStaff"))
	staffGroup.POST("", controllers.HandleStaffFunc(container, "createStaff"))
	staffGroup.PUT("/:id", controllers.HandleStaffFunc(container, "updateStaff"))
	staffGroup.DELETE("/:id", controllers.HandleStaffFunc(container, "deleteStaff"))

	// 会社路由
	companyGroup := auth.Group("/companies")
	companyGroup.GET("", controllers.HandleCompanyFunc(container, "getCompanies"))
	companyGroup.POST("", controllers.HandleCompanyFunc(container, "createCompany"))
	companyGroup.PUT("/:id", controllers.HandleCompanyFunc(container, "updateCompany"))
	companyGroup.DELETE("/:id", controllers.HandleCompanyFunc(container, "deleteCompany"))

	// 场所管理路由
	locationGroup := auth.Group("/locations")
	locationGroup.POST("", controllers.HandleLocationFunc(container, "createLocation"))
	locationGroup.PUT("/:id", controllers.HandleLocationFunc(container, "updateLocation"))
	locationGroup.DELETE("/:id", controllers.HandleLocationFunc(container, "deleteLocation"))

	// 事故类型管理路由
	auth.PUT("/situations", controllers.HandleSituationFunc(container, "upsertSituation"))
	auth.DELETE("/situations/:id", controllers.HandleSituationFunc(container, "deleteSituation"))

	// 受伤部位管理路由
	auth.PUT("/body-parts", controllers.HandleSituationFunc(container, "upsertBodyPart"))
	auth.DELETE("/body-parts/:id", controllers.HandleSituationFunc(container, "deleteBodyPart"))

	// 通知组路由
	auth.GET("/contact-groups", controllers.HandleSituationFunc(container, "getContactGroups"))
	auth.PUT("/contact-groups/:id/enabled", controllers.HandleSituationFunc(container, "setContactGroupEnabled"))

	// 主数据快照路由
	auth.GET("/snapshot", controllers.HandleSnapshotFunc(container, "exportSnapshot"))
	auth.PUT("/snapshot", controllers.HandleSnapshotFunc(container, "importSnapshot"))
}
