package handlers

import (
	"net/http"
	"strconv"

	"spa_salon_backend/internal/middleware"
	"spa_salon_backend/internal/models"
	"spa_salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// principalFrom extracts the authenticated principal placed in the context by
// the auth middleware. The second return is false when the route is not
// behind AuthMiddleware.
func principalFrom(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(middleware.PrincipalKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}

// parseIDParam parses a path parameter as an int64 ID, responding 400 on
// failure. Callers must return when ok is false.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" parameter.", c.Param(name)))
		return 0, false
	}
	return id, true
}

// pagination reads page/page_size query parameters with defaults.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}

// optionalQueryInt64 returns a pointer to the parsed query value, or nil when
// the parameter is absent or malformed.
func optionalQueryInt64(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &value
}

func paginatedResponse(c *gin.Context, data interface{}, total, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
