package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/assetflow/assetflow_backend/utils"
	"github.com/gin-gonic/gin"
)

// httpStatus maps the domain error kinds onto transport codes. Conflict-class
// failures (races, double closes, blocked deletes) are 409 so clients can
// refetch and retry; validation failures are 400; upstream trouble is 502/504.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, utils.ErrorUnknownEntity), errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrorConcurrentModification),
		errors.Is(err, utils.ErrorDoubleClose),
		errors.Is(err, utils.ErrorInUseBlocksInactivation),
		errors.Is(err, utils.ErrorHasHistory),
		errors.Is(err, utils.ErrorCatalogInUse),
		errors.Is(err, utils.ErrorDuplicate):
		return http.StatusConflict
	case errors.Is(err, utils.ErrorInvalidTransition),
		errors.Is(err, utils.ErrorConstraintViolation):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrorExternalTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, utils.ErrorExternalError):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func optQuery(c *gin.Context, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}

func optQueryInt(c *gin.Context, name string) *int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return &n
		}
	}
	return nil
}
