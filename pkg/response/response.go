package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response wrapper: success carries value, failure
// carries error.
type Envelope struct {
	Success bool        `json:"success"`
	Value   interface{} `json:"value,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func OK(c *gin.Context, value interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Value: value})
}

func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{Success: false, Error: msg})
}

// AbortFail is Fail for middleware, stopping the handler chain.
func AbortFail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: msg})
}
