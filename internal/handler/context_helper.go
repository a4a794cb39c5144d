package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/card-order-api/internal/middleware"
	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
	"github.com/noah-isme/card-order-api/pkg/response"
)

// adminActor returns the display name of the authenticated administrator,
// or "" so the service falls back to its default actor.
func adminActor(c *gin.Context) string {
	claims, ok := middleware.AdminClaims(c)
	if !ok {
		return ""
	}
	return claims.Name
}

// fail writes err, replacing the client message of server-side failures with
// the endpoint's own wording. 4xx messages pass through unchanged.
func fail(c *gin.Context, err error, serverMessage string) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= 500 && serverMessage != "" {
		response.Error(c, appErrors.Clone(appErr, serverMessage))
		return
	}
	response.Error(c, err)
}
