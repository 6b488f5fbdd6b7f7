package main

import (
	"net/http"
	"time"

	"github.com/assetflow/assetflow_backend/middlewares"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type openMaintenanceRequest struct {
	DeviceId       int     `json:"device_id" binding:"required"`
	SupplierId     *int    `json:"supplier_id"`
	ReportedDefect string  `json:"reported_defect" binding:"required"`
	Location       string  `json:"location"`
	ExpectedStatus *string `json:"expected_status"`
}

type closeMaintenanceRequest struct {
	FinalStatus        string           `json:"final_status" binding:"required,statusname"`
	AppliedSolution    string           `json:"applied_solution"`
	RepairCost         *decimal.Decimal `json:"repair_cost"`
	CostResponsibility *string          `json:"cost_responsibility"`
	Location           string           `json:"location"`
}

func registerMaintenanceRoutes(api *gin.RouterGroup) {
	api.GET("/maintenance", listMaintenanceHandler)
	api.GET("/maintenance/:id", getMaintenanceHandler)

	write := api.Group("/", middlewares.RequireWriter())
	write.POST("/maintenance", openMaintenanceHandler)
	write.PUT("/maintenance/:id", updateMaintenanceHandler)
	write.POST("/maintenance/:id/close", closeMaintenanceHandler)
}

func listMaintenanceHandler(c *gin.Context) {
	filter := models.MaintenanceFilter{
		Status:             optQuery(c, "status"),
		CollaboratorName:   optQuery(c, "collaborator"),
		CostResponsibility: optQuery(c, "cost_responsibility"),
	}
	if v := c.Query("send_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.SendFrom = &t
		}
	}
	if v := c.Query("send_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.SendTo = &end
		}
	}
	if v := c.Query("return_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.ReturnFrom = &t
		}
	}
	if v := c.Query("return_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.ReturnTo = &end
		}
	}

	orders, err := models.ListMaintenanceOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func getMaintenanceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	order, err := models.GetMaintenanceOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func openMaintenanceHandler(c *gin.Context) {
	var req openMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := workflow.OpenMaintenanceInput{
		DeviceId:       req.DeviceId,
		SupplierId:     req.SupplierId,
		ReportedDefect: req.ReportedDefect,
		Location:       req.Location,
	}
	if req.ExpectedStatus != nil {
		expected, err := models.ParseStatusName(*req.ExpectedStatus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.ExpectedStatus = &expected
	}

	result, err := workflow.OpenMaintenance(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func updateMaintenanceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.MaintenanceUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := models.UpdateOpenMaintenance(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func closeMaintenanceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var req closeMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	finalStatus, err := models.ParseStatusName(req.FinalStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input := workflow.CloseMaintenanceInput{
		OrderId:         id,
		FinalStatus:     finalStatus,
		AppliedSolution: req.AppliedSolution,
		RepairCost:      req.RepairCost,
		Location:        req.Location,
	}
	if req.CostResponsibility != nil {
		responsibility, err := models.ParseCostResponsibility(*req.CostResponsibility)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.CostResponsibility = &responsibility
	}

	result, err := workflow.CloseMaintenance(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
