package routes

import (
	adminapi "epaper-app/internal/api/admin"
	"epaper-app/internal/api/categories"
	editionsapi "epaper-app/internal/api/editions"
	"epaper-app/internal/api/hotspots"
	"epaper-app/internal/api/reader"
	"epaper-app/internal/app/http/middleware"
	"epaper-app/internal/domain/access"
	editionsvc "epaper-app/internal/editions"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, svc *editionsvc.Service, jwtSecret string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	readerH := reader.NewHandler(svc)
	r.GET("/epaper/editions/:id/pages/:pageNo/hotspots/:hotspotId", readerH.ResolveHotspot)

	editionsH := editionsapi.NewHandler(svc)
	hotspotsH := hotspots.NewHandler(svc)
	categoriesH := categories.NewHandler(svc)
	adminH := adminapi.NewHandler(svc)

	admin := r.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(jwtSecret),
		middleware.RequireRole(access.RoleAdmin, access.RoleOperator),
		middleware.SanitizeInput(),
	)

	admin.GET("/editions", editionsH.ListEditions)
	admin.POST("/editions", editionsH.CreateEdition)
	admin.POST("/editions/for-date", editionsH.FindOrCreateEdition)
	admin.DELETE("/editions/:id", middleware.RequireRole(access.RoleAdmin), editionsH.DeleteEdition)
	admin.GET("/editions/:id/readiness", editionsH.Readiness)
	admin.POST("/editions/:id/publish", editionsH.Publish)
	admin.POST("/editions/:id/unpublish", editionsH.Unpublish)

	admin.GET("/editions/:id/pages", editionsH.ListPages)
	admin.POST("/editions/:id/pages", editionsH.RegisterPage)
	admin.PUT("/editions/:id/pages/reorder", editionsH.ReorderPages)
	admin.PUT("/pages/:id", editionsH.UpdatePage)
	admin.DELETE("/pages/:id", editionsH.DeletePage)

	admin.POST("/pages/:id/hotspots", hotspotsH.Create)
	admin.POST("/pages/:id/hotspots/bulk-delete", hotspotsH.BulkDelete)
	admin.PUT("/hotspots/:id", hotspotsH.Update)
	admin.DELETE("/hotspots/:id", hotspotsH.Delete)

	admin.GET("/categories", categoriesH.List)
	admin.POST("/categories", categoriesH.Create)
	admin.PUT("/categories/reorder", categoriesH.Reorder)
	admin.DELETE("/categories/:id", categoriesH.Delete)

	admin.GET("/audit/soft-references", adminH.SoftReferences)
}
