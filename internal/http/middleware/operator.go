package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deskline/backend/internal/db"
)

const (
	// OperatorHeader carries the authenticated operator name. Authentication
	// itself happens upstream; this layer only resolves the desk assignment.
	OperatorHeader = "X-Operator"

	CtxOperator = "operator"
	CtxDesk     = "desk"
)

// Operator resolves the acting operator to their desk. Operators without a
// profile cannot touch the queue.
func Operator(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.GetHeader(OperatorHeader))
		if name == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Operator identity required",
				},
			})
			return
		}

		profile, err := store.GetOperatorProfile(c.Request.Context(), name)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{
					"code":    "DB_ERROR",
					"message": "Failed to resolve operator",
				},
			})
			return
		}
		if profile == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Operator has no desk assignment",
				},
			})
			return
		}

		c.Set(CtxOperator, profile.Operator)
		c.Set(CtxDesk, profile.Desk)
		c.Next()
	}
}
