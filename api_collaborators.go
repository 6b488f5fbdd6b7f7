package main

import (
	"net/http"

	"github.com/assetflow/assetflow_backend/middlewares"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/gin-gonic/gin"
)

func registerCollaboratorRoutes(api *gin.RouterGroup) {
	api.GET("/collaborators", listCollaboratorsHandler)
	api.GET("/collaborators/:id", getCollaboratorHandler)

	write := api.Group("/", middlewares.RequireWriter())
	write.POST("/collaborators", createCollaboratorHandler)
	write.PUT("/collaborators/:id", updateCollaboratorHandler)
	write.POST("/collaborators/:id/inactivate", inactivateCollaboratorHandler)
	write.POST("/collaborators/:id/activate", activateCollaboratorHandler)

	// Permanent deletion is destructive and Administrator only.
	admin := api.Group("/", middlewares.RequireRole(models.RoleAdministrator))
	admin.DELETE("/collaborators/:id", deleteCollaboratorHandler)
}

func listCollaboratorsHandler(c *gin.Context) {
	filter := models.CollaboratorFilter{
		Name:     optQuery(c, "name"),
		SectorId: optQueryInt(c, "sector_id"),
		Status:   optQuery(c, "status"),
	}
	collaborators, err := models.ListCollaborators(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collaborators)
}

func getCollaboratorHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	collaborator, err := models.GetCollaborator(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collaborator)
}

func createCollaboratorHandler(c *gin.Context) {
	var input models.NewCollaborator
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	collaborator, err := models.CreateCollaborator(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, collaborator)
}

func updateCollaboratorHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewCollaborator
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	collaborator, err := models.UpdateCollaborator(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collaborator)
}

func inactivateCollaboratorHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	collaborator, err := models.SetCollaboratorInactive(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collaborator)
}

func activateCollaboratorHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	collaborator, err := models.SetCollaboratorActive(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, collaborator)
}

func deleteCollaboratorHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	logEntry, err := models.DeleteCollaboratorPermanently(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logEntry)
}
