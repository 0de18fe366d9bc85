package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/MiguelSerea/taskmanagement/internal/managers"
	"github.com/MiguelSerea/taskmanagement/internal/schemas"
	"github.com/MiguelSerea/taskmanagement/internal/utils"
)

// RequireAuth resolves the bearer token from the Authorization header and
// stores the authenticated user's ID in the context. Requests with a
// missing or unknown token get 401, deactivated accounts get 403.
func RequireAuth(databaseMgr managers.DatabaseMgr, tokenMgr managers.TokenMgr) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		pool := databaseMgr.GetPool()
		userID, err := tokenMgr.Resolve(c.Request.Context(), pool, token)
		if err != nil {
			if errors.Is(err, managers.ErrTokenUnknown) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
				return
			}
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			c.Abort()
			return
		}

		var isActive bool
		row := pool.QueryRow(c.Request.Context(), "SELECT is_active FROM accounts.users WHERE user_id = $1", userID)
		if err := row.Scan(&isActive); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
				return
			}
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			c.Abort()
			return
		}
		if !isActive {
			c.AbortWithStatusJSON(http.StatusForbidden, &schemas.ErrorDTO{Error: *schemas.UserDeactivated})
			return
		}

		c.Set(utils.UserIdKey.String(), userID.String())
		c.Next()
	}
}
