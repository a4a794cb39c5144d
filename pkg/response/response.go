package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
)

// Envelope represents the common response contract consumed by the
// browser pages: {success, data?, applicationId?, message?, code?}.
type Envelope struct {
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	ApplicationID string      `json:"applicationId,omitempty"`
	Message       string      `json:"message,omitempty"`
	Code          string      `json:"code,omitempty"`
}

// JSON sends a success response carrying data.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Success: true, Data: data})
}

// OK sends a 200 success response with an optional human readable message.
func OK(c *gin.Context, message string) {
	noStore(c)
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Submitted answers a successful application submission.
func Submitted(c *gin.Context, applicationID, message string) {
	noStore(c)
	c.JSON(http.StatusOK, Envelope{Success: true, ApplicationID: applicationID, Message: message})
}

// Error sends an error response converting the error to the common
// structure. The original error is attached to the gin context so the
// request logger records the full cause.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Success: false, Message: appErr.Message, Code: appErr.Code})
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
