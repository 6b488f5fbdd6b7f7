package main

import (
	"net/http"
	"time"

	"github.com/assetflow/assetflow_backend/models"
	"github.com/gin-gonic/gin"
)

func registerMovementRoutes(api *gin.RouterGroup) {
	api.GET("/movements", listMovementsHandler)
}

func movementFilterFromQuery(c *gin.Context) models.MovementFilter {
	filter := models.MovementFilter{
		DeviceSerial:     optQuery(c, "serial"),
		StatusName:       optQuery(c, "status"),
		CollaboratorName: optQuery(c, "collaborator"),
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.To = &end
		}
	}
	return filter
}

func listMovementsHandler(c *gin.Context) {
	entries, err := models.ListMovements(c.Request.Context(), movementFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
