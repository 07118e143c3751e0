package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"shorturl-api/internal/clock"
	"shorturl-api/internal/config"
	"shorturl-api/internal/controllers"
	"shorturl-api/internal/entities"
	"shorturl-api/internal/jwt"
	"shorturl-api/internal/middleware"
	"shorturl-api/internal/service"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Config      *config.Config
	LinkService service.LinkService
	UserService service.UserService
	AuthService service.AuthService
	JWTService  *jwt.JWTService
	Clock       clock.Clock
}

// NewRouter builds the gin engine. The returned function stops the rate
// limiters' background cleanup.
func NewRouter(deps Dependencies) (*gin.Engine, func()) {
	cfg := deps.Config

	linkController := controllers.NewLinkController(deps.LinkService, deps.Clock)
	authController := controllers.NewAuthController(deps.AuthService)
	userController := controllers.NewUserController(deps.UserService)
	qrcodeController := controllers.NewQRCodeController(deps.LinkService, cfg.QRSize)

	var limiters []*middleware.RateLimiter
	limit := func(rps float64, burst int) gin.HandlerFunc {
		if rps <= 0 {
			return func(c *gin.Context) { c.Next() }
		}
		rl := middleware.NewRateLimiter(rate.Limit(rps), burst)
		limiters = append(limiters, rl)
		return rl.LimitMiddleware()
	}

	generalLimit := limit(cfg.RateLimitRPS, cfg.RateLimitBurst)
	authLimit := limit(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst)
	shortenLimit := limit(cfg.RateLimitShortenRPS, cfg.RateLimitShortenBurst)
	redirectLimit := limit(cfg.RateLimitRedirectRPS, cfg.RateLimitRedirectBurst)

	requireAuth := middleware.AuthMiddleware(deps.JWTService)
	optionalAuth := middleware.OptionalAuthMiddleware(deps.JWTService)
	adminOnly := middleware.RequireRole(entities.RoleAdmin)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.Timeout(cfg.StoreTimeout))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   deps.Clock.Now().Format(time.RFC3339),
		})
	})

	router.GET("/:code", redirectLimit, linkController.RedirectToURL)

	api := router.Group("/api/v1")
	{
		api.GET("/redirect/:code", redirectLimit, linkController.ResolveURL)
		api.GET("/qrcode/:code", generalLimit, qrcodeController.GenerateQRCode)

		auth := api.Group("/auth")
		auth.Use(authLimit)
		{
			auth.POST("/register", authController.Register)
			auth.POST("/signin", authController.SignIn)
			auth.POST("/login", authController.SignIn)
		}

		links := api.Group("/links")
		links.Use(generalLimit)
		{
			links.POST("", shortenLimit, optionalAuth, linkController.CreateLink)
			links.GET("", requireAuth, linkController.ListLinks)
			links.GET("/:id", requireAuth, linkController.GetLink)
			links.PUT("/:id", requireAuth, linkController.UpdateLink)
			links.DELETE("/:id", requireAuth, linkController.DeleteLink)
		}

		users := api.Group("/users")
		users.Use(generalLimit, requireAuth)
		{
			users.POST("", adminOnly, userController.CreateUser)
			users.GET("", adminOnly, userController.ListUsers)
			users.GET("/email/:email", adminOnly, userController.GetUserByEmail)
			users.GET("/:id", userController.GetUser)
			users.PUT("/:id", userController.UpdateUser)
			users.DELETE("/:id", userController.DeleteUser)
		}
	}

	stop := func() {
		for _, rl := range limiters {
			rl.Stop()
		}
	}

	return router, stop
}
