package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/assetflow/assetflow_backend/middlewares"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/models/reports"
	"github.com/gin-gonic/gin"
)

const maxImportSize = 10 << 20 // 10 MB

type importFunc func(ctx context.Context, reader io.Reader) (*reports.ImportResult, error)

func registerImportExportRoutes(api *gin.RouterGroup) {
	write := api.Group("/", middlewares.RequireRole(models.RoleAdministrator))
	write.POST("/imports/collaborators", importHandler(reports.ImportCollaborators))
	write.POST("/imports/devices", importHandler(reports.ImportDevices))
	write.POST("/imports/brands", importHandler(reports.ImportBrands))
	write.POST("/imports/gmail-accounts", importHandler(reports.ImportGmailAccounts))
	write.POST("/imports/movements", importHandler(reports.ImportMovements))

	api.GET("/exports/inventory", exportInventoryHandler)
	api.GET("/exports/movements", exportMovementsHandler)
}

func importHandler(run importFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxImportSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds 10 MB"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()

		result, err := run(c.Request.Context(), file)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func exportInventoryHandler(c *gin.Context) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="inventory_`+time.Now().Format("2006-01-02")+`.xlsx"`)
	if err := reports.ExportInventoryExcel(c.Request.Context(), c.Writer); err != nil {
		respondError(c, err)
	}
}

func exportMovementsHandler(c *gin.Context) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="movements_`+time.Now().Format("2006-01-02")+`.xlsx"`)
	if err := reports.ExportMovementsExcel(c.Request.Context(), movementFilterFromQuery(c), c.Writer); err != nil {
		respondError(c, err)
	}
}
