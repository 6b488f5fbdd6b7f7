package main

import (
	"fmt"
	"net/http"

	"github.com/assetflow/assetflow_backend/documents"
	"github.com/gin-gonic/gin"
)

func registerDocumentRoutes(api *gin.RouterGroup) {
	api.GET("/documents/responsibility-term/:entryId", responsibilityTermHandler)
	api.GET("/documents/label/:deviceId", deviceLabelHandler)
}

func responsibilityTermHandler(c *gin.Context) {
	entryId, ok := pathId(c, "entryId")
	if !ok {
		return
	}
	pdf, err := documents.ResponsibilityTermForEntry(c.Request.Context(), entryId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="responsibility_term_%d.pdf"`, entryId))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func deviceLabelHandler(c *gin.Context) {
	deviceId, ok := pathId(c, "deviceId")
	if !ok {
		return
	}
	pdf, err := documents.DeviceLabel(c.Request.Context(), deviceId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="device_label_%d.pdf"`, deviceId))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
