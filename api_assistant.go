package main

import (
	"net/http"

	"github.com/assetflow/assetflow_backend/assistant"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func registerAssistantRoutes(api *gin.RouterGroup, a *assistant.Assistant) {
	api.POST("/assistant/chat", func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}

		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		reply, err := a.HandleMessage(c.Request.Context(), userId, req.Message)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	})
}
