package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wonny/stockspider/internal/api/middleware"
)

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// Meta represents metadata in response
type Meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Count     int       `json:"count,omitempty"`
}

// Success sends a successful response with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: newMeta(c),
	})
}

// SuccessWithMessage sends a successful response with data and message
func SuccessWithMessage(c *gin.Context, data interface{}, message string) {
	meta := newMeta(c)
	meta.Message = message
	c.JSON(http.StatusOK, SuccessResponse{Data: data, Meta: meta})
}

// SuccessList sends a successful response with list data and count
func SuccessList(c *gin.Context, data interface{}, count int) {
	meta := newMeta(c)
	meta.Count = count
	c.JSON(http.StatusOK, SuccessResponse{Data: data, Meta: meta})
}

func newMeta(c *gin.Context) Meta {
	return Meta{
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now(),
	}
}
