package main

import (
	"net/http"

	"github.com/assetflow/assetflow_backend/models"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type passwordResetRequest struct {
	Username string `json:"username" binding:"required"`
}

type passwordResetConfirm struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func registerPublicRoutes(r *gin.Engine) {
	r.POST("/login", loginHandler)
	r.POST("/password-reset/request", passwordResetRequestHandler)
	r.POST("/password-reset/confirm", passwordResetConfirmHandler)
}

func loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	info, err := models.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

func passwordResetRequestHandler(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// Always 202: the response must not reveal whether the username exists.
	if err := models.RequestPasswordReset(c.Request.Context(), req.Username); err != nil {
		_ = c.Error(err)
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "if the account exists, a reset email was sent"})
}

func passwordResetConfirmHandler(c *gin.Context) {
	var req passwordResetConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := models.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
