package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/troikatech/care-voice/pkg/errors"
	"github.com/troikatech/care-voice/pkg/utils"
)

// ValidateObjectIDParam validates that an ID parameter is a MongoDB ObjectID
func ValidateObjectIDParam(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param(paramName)
		if id == "" {
			errors.BadRequest(c, paramName+" parameter is required")
			c.Abort()
			return
		}

		if !primitive.IsValidObjectID(id) {
			errors.NotFound(c, "profile not found")
			c.Abort()
			return
		}

		c.Set(paramName, id)
		c.Next()
	}
}

// ValidatePhoneParam accepts any caller id a profile can be stored under,
// so every stored profile can be fetched back by its phone.
func ValidatePhoneParam(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := SanitizeString(c.Param(paramName))
		if phone == "" {
			errors.BadRequest(c, paramName+" parameter is required")
			c.Abort()
			return
		}

		if !utils.ValidCallerID(phone) {
			errors.BadRequest(c, "invalid "+paramName+": must be an E.164 number or a provider caller id without spaces")
			c.Abort()
			return
		}

		c.Set(paramName, phone)
		c.Next()
	}
}

// SanitizeString removes potentially dangerous characters from strings
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}
