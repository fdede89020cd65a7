package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/prize_address/internal/middleware"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health    *HealthHandler
	Territory *TerritoryHandler
	Site      *SiteHandler
	Form      *FormHandler
	Events    *SSEHandler
}

// SetupRoutes registers all routes.
func SetupRoutes(router *gin.Engine, handlers *Handlers, sessionMiddleware *middleware.SessionMiddleware) {
	v1 := router.Group("/v1")

	v1.GET("/health", handlers.Health.GetHealth)

	// Thai address hierarchy
	territory := v1.Group("/territory")
	{
		territory.GET("/province", handlers.Territory.GetProvinces)
		territory.GET("/district/:province_code", handlers.Territory.GetDistrictsByProvince)
		territory.GET("/sub-district/:district_code", handlers.Territory.GetSubDistrictsByDistrict)
		territory.GET("/postal-code", handlers.Territory.GetPostalCode)
	}

	v1.GET("/sites/:site", handlers.Site.GetSite)

	if handlers.Events != nil {
		v1.GET("/events", handlers.Events.Stream)
	}

	// Form sessions
	v1.POST("/forms", handlers.Form.CreateForm)
	current := v1.Group("/forms/current")
	current.Use(sessionMiddleware.Handle())
	{
		current.GET("", handlers.Form.GetForm)
		current.PATCH("", handlers.Form.UpdateField)
		current.DELETE("", handlers.Form.ResetForm)
		current.POST("/submit", handlers.Form.SubmitForm)
		current.GET("/submissions/:submission_id", handlers.Form.GetSubmission)
	}
}
