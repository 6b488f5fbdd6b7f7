package main

import (
	"net/http"

	"github.com/assetflow/assetflow_backend/middlewares"
	"github.com/assetflow/assetflow_backend/models"
	"github.com/gin-gonic/gin"
)

func registerGmailRoutes(api *gin.RouterGroup) {
	api.GET("/gmail-accounts", listGmailAccountsHandler)

	write := api.Group("/", middlewares.RequireWriter())
	write.POST("/gmail-accounts", createGmailAccountHandler)
	write.PUT("/gmail-accounts/:id", updateGmailAccountHandler)
	write.DELETE("/gmail-accounts/:id", deleteGmailAccountHandler)
}

func listGmailAccountsHandler(c *gin.Context) {
	accounts, err := models.ListGmailAccounts(c.Request.Context(), optQuery(c, "address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func createGmailAccountHandler(c *gin.Context) {
	var input models.NewGmailAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account, err := models.CreateGmailAccount(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func updateGmailAccountHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewGmailAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account, err := models.UpdateGmailAccount(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func deleteGmailAccountHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	account, err := models.DeleteGmailAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
