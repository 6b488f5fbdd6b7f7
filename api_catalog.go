package main

import (
	"net/http"

	"github.com/assetflow/assetflow_backend/middlewares"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/gin-gonic/gin"
)

func registerCatalogRoutes(api *gin.RouterGroup) {
	api.GET("/statuses", func(c *gin.Context) {
		statuses, err := models.ListStatuses(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, statuses)
	})

	api.GET("/brands", listBrandsHandler)
	api.GET("/sectors", listSectorsHandler)
	api.GET("/suppliers", listSuppliersHandler)
	api.GET("/device-models", listDeviceModelsHandler)

	// catalog mutation is reserved to administrators; everyone reads
	write := api.Group("/", middlewares.RequireRole(models.RoleAdministrator))
	write.POST("/brands", createBrandHandler)
	write.PUT("/brands/:id", updateBrandHandler)
	write.DELETE("/brands/:id", deleteBrandHandler)
	write.POST("/sectors", createSectorHandler)
	write.PUT("/sectors/:id", updateSectorHandler)
	write.DELETE("/sectors/:id", deleteSectorHandler)
	write.POST("/suppliers", createSupplierHandler)
	write.PUT("/suppliers/:id", updateSupplierHandler)
	write.DELETE("/suppliers/:id", deleteSupplierHandler)
	write.POST("/device-models", createDeviceModelHandler)
	write.PUT("/device-models/:id", updateDeviceModelHandler)
	write.DELETE("/device-models/:id", deleteDeviceModelHandler)
}

func listBrandsHandler(c *gin.Context) {
	brands, err := models.ListBrands(c.Request.Context(), optQuery(c, "name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

func createBrandHandler(c *gin.Context) {
	var input models.NewBrand
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	brand, err := models.CreateBrand(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func updateBrandHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewBrand
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	brand, err := models.UpdateBrand(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brand)
}

func deleteBrandHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	brand, err := models.DeleteBrand(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, brand)
}

func listSectorsHandler(c *gin.Context) {
	sectors, err := models.ListSectors(c.Request.Context(), optQuery(c, "name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sectors)
}

func createSectorHandler(c *gin.Context) {
	var input models.NewSector
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sector, err := models.CreateSector(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sector)
}

func updateSectorHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewSector
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sector, err := models.UpdateSector(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sector)
}

func deleteSectorHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	sector, err := models.DeleteSector(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sector)
}

func listSuppliersHandler(c *gin.Context) {
	suppliers, err := models.ListSuppliers(c.Request.Context(), optQuery(c, "name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func createSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func updateSupplierHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func deleteSupplierHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	supplier, err := models.DeleteSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func listDeviceModelsHandler(c *gin.Context) {
	deviceModels, err := models.ListDeviceModels(c.Request.Context(), optQuery(c, "name"), optQueryInt(c, "brand_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deviceModels)
}

func createDeviceModelHandler(c *gin.Context) {
	var input models.NewDeviceModel
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	model, err := models.CreateDeviceModel(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model)
}

func updateDeviceModelHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewDeviceModel
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	model, err := models.UpdateDeviceModel(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model)
}

func deleteDeviceModelHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	model, err := models.DeleteDeviceModel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model)
}
