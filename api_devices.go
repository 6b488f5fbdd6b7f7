package main

import (
	"net/http"

	"github.com/assetflow/assetflow_backend/middlewares"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/workflow"
	"github.com/gin-gonic/gin"
)

type transitionRequest struct {
	TargetStatus   string                  `json:"target_status" binding:"required,statusname"`
	CollaboratorId *int                    `json:"collaborator_id"`
	Location       string                  `json:"location"`
	Observation    string                  `json:"observation"`
	Checklist      *models.ReturnChecklist `json:"checklist"`
	SupplierId     *int                    `json:"supplier_id"`
	ReportedDefect string                  `json:"reported_defect"`
	ExpectedStatus *string                 `json:"expected_status"`
}

func registerDeviceRoutes(api *gin.RouterGroup) {
	api.GET("/devices", listDevicesHandler)
	api.GET("/devices/:id", getDeviceHandler)
	api.GET("/devices/:id/state", getDeviceStateHandler)
	api.GET("/devices/:id/history", getDeviceHistoryHandler)

	write := api.Group("/", middlewares.RequireWriter())
	write.POST("/devices", registerDeviceHandler)
	write.PUT("/devices/:id", updateDeviceHandler)
	write.DELETE("/devices/:id", deleteDeviceHandler)
	write.POST("/devices/:id/transition", transitionDeviceHandler)
}

func listDevicesHandler(c *gin.Context) {
	filter := models.DeviceFilter{
		Serial:     optQuery(c, "serial"),
		StatusName: optQuery(c, "status"),
		ModelId:    optQueryInt(c, "model_id"),
	}
	devices, err := models.ListDevices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, devices)
}

func getDeviceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	device, err := models.GetDevice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

func getDeviceStateHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	state, err := models.GetDeviceState(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func getDeviceHistoryHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	history, err := models.DeviceHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func registerDeviceHandler(c *gin.Context) {
	var input models.NewDevice
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	device, err := models.RegisterDevice(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, device)
}

func updateDeviceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.DeviceFieldsUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	device, err := models.UpdateDeviceFields(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

func deleteDeviceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	device, err := models.DeleteDevice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

func transitionDeviceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := models.ParseStatusName(req.TargetStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input := workflow.TransitionInput{
		DeviceId:       id,
		TargetStatus:   target,
		CollaboratorId: req.CollaboratorId,
		Location:       req.Location,
		Observation:    req.Observation,
		Checklist:      req.Checklist,
		SupplierId:     req.SupplierId,
		ReportedDefect: req.ReportedDefect,
	}
	if req.ExpectedStatus != nil {
		expected, err := models.ParseStatusName(*req.ExpectedStatus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.ExpectedStatus = &expected
	}

	result, err := workflow.Transition(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
