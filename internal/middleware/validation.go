package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/MiguelSerea/taskmanagement/internal/schemas"
	"github.com/MiguelSerea/taskmanagement/internal/utils"
)

// ValidateAndSanitizeStruct binds the request body into a fresh instance of
// the given struct type, strips markup from its string fields and validates
// it. The validated payload is stored in the context for the handler.
func ValidateAndSanitizeStruct(obj interface{}) gin.HandlerFunc {
	structType := reflect.TypeOf(obj).Elem()

	return func(c *gin.Context) {
		payload := reflect.New(structType).Interface()

		if err := c.ShouldBindJSON(payload); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		validator := utils.GetValidator()
		validator.SanitizeStruct(payload)

		if err := validator.Validate.Struct(payload); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), payload)
		c.Next()
	}
}
