package main

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/assetflow/assetflow_backend/middlewares"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxInvoiceSize = 20 << 20 // 20 MB

func registerPurchaseRoutes(api *gin.RouterGroup) {
	api.GET("/purchases", listPurchasesHandler)
	api.GET("/purchases/:id", getPurchaseHandler)

	write := api.Group("/", middlewares.RequireWriter())
	write.POST("/purchases", createPurchaseHandler)
	write.PUT("/purchases/:id", updatePurchaseHandler)
	write.DELETE("/purchases/:id", deletePurchaseHandler)
	write.POST("/purchases/:id/invoice", uploadPurchaseInvoiceHandler)
}

func listPurchasesHandler(c *gin.Context) {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			to = &end
		}
	}
	purchases, err := models.ListPurchases(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func getPurchaseHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	purchase, err := models.GetPurchase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func createPurchaseHandler(c *gin.Context) {
	var input models.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	purchase, err := models.CreatePurchase(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func updatePurchaseHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	purchase, err := models.UpdatePurchase(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func deletePurchaseHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	purchase, err := models.DeletePurchase(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// uploadPurchaseInvoiceHandler stores the invoice file in the bucket first,
// then records the object key. A failed upload leaves the purchase untouched.
func uploadPurchaseInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	if _, err := models.GetPurchase(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxInvoiceSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds 20 MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectKey := fmt.Sprintf("invoices/%d/%s%s", id, uuid.NewString(), filepath.Ext(fileHeader.Filename))
	if err := utils.SaveObjectToGCS(c.Request.Context(), objectKey, contentType, data); err != nil {
		respondError(c, err)
		return
	}

	purchase, err := models.AttachPurchaseInvoice(c.Request.Context(), id, objectKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"purchase":    purchase,
		"invoice_url": utils.BuildObjectAccessURL(objectKey),
	})
}
