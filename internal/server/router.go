package server

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "ok",
		})
	})
	// the dashboard bundle is optional; unknown paths 404 without it
	hasDashboard := false
	if _, err := os.Stat("./dashboard/build/index.html"); err == nil {
		hasDashboard = true
		router.Static("/static", "./dashboard/build/static")
	}
	router.NoRoute(func(c *gin.Context) {
		if !hasDashboard || strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{"error": "not found"})
			return
		}
		// all other routes go to index.html for client-side routing
		c.File("./dashboard/build/index.html")
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	apiV1 := router.Group("/api/v1")
	s.SetUpApiV1Router(apiV1)

	return router
}

func (s *Server) SetUpApiV1Router(apiV1 *gin.RouterGroup) {
	apiV1.Use(TrySetUserToContext(s.conf.JwtSecret))

	apiV1.POST("/login", s.handleLogin)
	apiV1.POST("/logout", s.handleLogout)

	v1Authed := apiV1.Group("")
	v1Authed.Use(NeedAuth(false))

	v1UserSettings := v1Authed.Group("/settings")
	v1UserSettings.GET("/profile", s.handleGetUserProfile)

	{
		v1Admin := v1Authed.Group("/admin")
		v1Admin.Use(NeedAuth(true))

		v1Admin.GET("/users", s.handleAdminListUsers)
		v1Admin.POST("/users", s.handleAdminCreateUsers)
		v1Admin.DELETE("/user/:user_id", s.handleAdminDeleteUser)
	}

	{
		v1Insights := v1Authed.Group("/traces/insights")
		if s.cache != nil {
			v1Insights.Use(cacheResponses(s.cache))
		}

		v1Insights.POST("/traffic/volume", s.handleTrafficVolume)
		v1Insights.POST("/traffic/latency", s.handleTrafficLatency)
		v1Insights.POST("/traffic/errors", s.handleTrafficErrors)

		v1Insights.POST("/tokens/usage", s.handleTokenUsage)

		v1Insights.POST("/assessments/discovery", s.handleAssessmentsDiscovery)
		v1Insights.POST("/assessments/metrics", s.handleAssessmentMetrics)

		v1Insights.POST("/tools/discovery", s.handleToolsDiscovery)
		v1Insights.POST("/tools/metrics", s.handleToolMetrics)

		v1Insights.POST("/tags/discovery", s.handleTagsDiscovery)
		v1Insights.POST("/tags/values", s.handleTagValues)
		v1Insights.POST("/tags/metrics", s.handleTagMetrics)

		v1Insights.POST("/dimensions/discovery", s.handleDimensionsDiscovery)
		v1Insights.POST("/dimensions/npmi", s.handleDimensionNPMI)

		v1Insights.POST("/correlations", s.handleCorrelations)
	}
}
