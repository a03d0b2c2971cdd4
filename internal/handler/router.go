package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plz-territory-go/internal/middleware"
)

// Router bundles everything the HTTP routes need
type Router struct {
	Auth      *AuthHandler
	Regions   *RegionHandler
	Map       *MapHandler
	Health    *HealthHandler
	Validator middleware.TokenValidator
	Metrics   http.Handler
	Observer  middleware.RequestObserver

	CORSOrigins []string
	Logger      *zap.Logger
}

// Engine builds the gin engine with all public and admin routes
func (r *Router) Engine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(r.Logger, r.Observer))

	if len(r.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     r.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           86400,
		}))
	}

	// Public routes
	router.GET("/", r.Map.Index)
	if r.Health != nil {
		router.GET("/healthz", r.Health.Health)
	}
	if r.Metrics != nil {
		router.GET("/metrics", gin.WrapH(r.Metrics))
	}

	api := router.Group("/api")
	{
		api.POST("/login", r.Auth.Login)

		api.GET("/representatives", r.Regions.GetRepresentatives)
		api.GET("/representatives/:name/regions", r.Regions.GetRepresentativeRegions)
		api.GET("/regions/unassigned", r.Regions.GetUnassignedRegions)
		api.GET("/assignments", r.Regions.GetAssignments)

		api.GET("/legend", r.Map.GetLegend)
		api.GET("/map", r.Map.GetMap)
	}

	// Admin routes
	admin := router.Group("/api/admin")
	admin.Use(middleware.JWTAuthMiddleware(r.Validator))
	{
		admin.POST("/assignments", r.Regions.Assign)
		admin.PUT("/representatives/:name/regions", r.Regions.SetRegions)
		admin.POST("/regions/unassign", r.Regions.Unassign)
		admin.PATCH("/representatives/:name", r.Regions.UpdateRepresentative)
		admin.DELETE("/representatives/:name", r.Regions.DeleteRepresentative)

		admin.POST("/seed", r.Map.Seed)
		admin.GET("/export", r.Map.Export)
	}

	return router
}
