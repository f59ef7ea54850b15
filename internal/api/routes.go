package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/studies", handler.CreateStudy)
		api.GET("/studies", handler.ListStudies)
		api.GET("/studies/:id", handler.GetStudy)
		api.DELETE("/studies/:id", handler.DeleteStudy)
		api.PUT("/studies/:id/standard", handler.SelectStandard)
		api.PUT("/studies/:id/artifacts", handler.AttachArtifacts)
		api.GET("/studies/:id/export", handler.ExportStudy)

		api.POST("/approvals", handler.CalculateApproval)

		api.POST("/projects", handler.CreateProject)
		api.GET("/projects", handler.ListProjects)
		api.GET("/projects/:id", handler.GetProject)
		api.DELETE("/projects/:id", handler.DeleteProject)
		api.GET("/projects/:id/stats", handler.GetProjectStats)
		api.POST("/projects/:id/units", handler.CreateUnit)
		api.GET("/projects/:id/units", handler.ListUnits)
		api.POST("/projects/:id/units/import", handler.ImportUnits)
	}
}
