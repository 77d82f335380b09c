package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openparish/parishboard/config"
	"github.com/openparish/parishboard/controllers"
	"github.com/openparish/parishboard/middleware"
	"github.com/openparish/parishboard/services"
	"github.com/openparish/parishboard/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, cache services.Cache) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Request logs go to a dedicated rolling file, separate from the
	// application log.
	gl, err := utils.NewRollingFileLogger(cfg.GinLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl))
		r.Use(utils.RecoveryWithZap(gl))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	boardController := controllers.NewBoardController(db, cache)
	visitorController := controllers.NewVisitorController(db)
	adminController := controllers.NewAdminController(db)
	uploadController := controllers.NewUploadController()

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/captcha", authController.Captcha)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)
	authGroup.DELETE("/account", middleware.AuthRequired(), authController.CloseAccount)

	boardGroup := api.Group("/board")
	boardGroup.GET("/:category/posts", boardController.ListPosts)
	boardGroup.GET("/:category/posts/:id", boardController.GetPost)
	boardGroup.POST("/posts", middleware.AuthRequired(), boardController.CreatePost)
	boardGroup.DELETE("/posts/:id", middleware.AuthRequired(), boardController.DeletePost)
	// Comments are open to visitors; the author is whatever name they
	// supply.
	boardGroup.POST("/posts/:id/comments", boardController.CreateComment)

	api.POST("/visitors", visitorController.Increment)
	api.GET("/visitors/today", visitorController.Today)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/upload", uploadController.Upload)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthRequired())
	adminGroup.GET("/stats", adminController.Stats)
	adminGroup.GET("/users", adminController.ListUsers)
	adminGroup.GET("/users/recent", adminController.RecentUsers)
	adminGroup.PATCH("/users/:id/role", adminController.ToggleUserRole)
	adminGroup.DELETE("/users/:id", adminController.DeleteUser)
	adminGroup.GET("/posts/categories", adminController.PostCategories)
	adminGroup.GET("/posts", adminController.Posts)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
