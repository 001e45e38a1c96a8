package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/programmeradu/ownai/internal/core/domain"
	"github.com/programmeradu/ownai/internal/logger"
	logicv1 "github.com/programmeradu/ownai/internal/logic/v1"
	"github.com/programmeradu/ownai/middleware"
)

// SessionMiddleware resolves the session cookie to an identity and stores it
// in the request context. A store failure aborts the request with 500.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token, _ := c.Cookie(h.cookie.Name)

		id, err := h.sessions.Resolve(ctx, token)
		if err != nil {
			logger.FromContext(ctx).Error().Err(err).Msg("Session resolution failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Request = c.Request.WithContext(domain.WithIdentity(ctx, id))
		c.Next()
	}
}

// Require admits the request under policy p or redirects to the sign-in
// page. Handlers behind it read the admitted identity with identity(c).
func (h *Handler) Require(p logicv1.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		admission := logicv1.Admit(p, identity(c))
		if !admission.Admitted() {
			middleware.AdmissionsTotal.WithLabelValues(p.String(), "rejected").Inc()
			logger.FromContext(c.Request.Context()).Debug().
				Err(admission.Reason()).
				Str("policy", p.String()).
				Msg("Request not admitted")
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		middleware.AdmissionsTotal.WithLabelValues(p.String(), "admitted").Inc()
		c.Next()
	}
}

// identity returns the identity resolved by SessionMiddleware.
func identity(c *gin.Context) domain.Identity {
	id, _ := domain.IdentityFromContext(c.Request.Context())
	return id
}
