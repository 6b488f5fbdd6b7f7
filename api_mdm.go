package main

import (
	"net/http"

	"github.com/assetflow/assetflow_backend/mdm"
	"github.com/assetflow/assetflow_backend/middlewares"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/gin-gonic/gin"
)

func registerMdmRoutes(api *gin.RouterGroup, client *mdm.Client) {
	api.GET("/mdm/audit", func(c *gin.Context) {
		report, err := mdm.RunAudit(c.Request.Context(), client)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	})

	// Reconciliation rewrites custody one device at a time; Administrator only.
	admin := api.Group("/", middlewares.RequireRole(models.RoleAdministrator))
	admin.POST("/mdm/reconcile", func(c *gin.Context) {
		var body struct {
			SerialNumber string `json:"serial_number" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		report, err := mdm.RunAudit(c.Request.Context(), client)
		if err != nil {
			respondError(c, err)
			return
		}
		entry, err := mdm.FindDivergent(report, body.SerialNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		result, err := mdm.ReconcileDivergent(c.Request.Context(), entry)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})
}
