package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/programmeradu/ownai/internal/core/domain"
	"github.com/programmeradu/ownai/internal/logger"
	logicv1 "github.com/programmeradu/ownai/internal/logic/v1"
	"github.com/programmeradu/ownai/middleware"
)

// LoginPath is where rejected requests are redirected.
const LoginPath = "/auth/login"

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handler groups the HTTP handlers of the account API.
// Dependencies are injected via the constructor; there is no global state.
type Handler struct {
	sessions *logicv1.SessionService
	account  *logicv1.SettingsService
	cookie   CookieConfig
}

// NewHandler creates a new Handler.
func NewHandler(sessions *logicv1.SessionService, account *logicv1.SettingsService, cookie CookieConfig) *Handler {
	return &Handler{
		sessions: sessions,
		account:  account,
		cookie:   cookie,
	}
}

// RegisterRoutes registers the account routes. Every route runs behind
// SessionMiddleware, so the identity is resolved exactly once per request.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/", h.SessionMiddleware())

	g.GET("/auth/login", h.LoginPage)
	g.POST("/auth/login", h.Login)
	g.POST("/auth/demo", h.Demo)
	g.POST("/auth/logout", h.Logout)
	g.GET("/auth/me", h.Require(logicv1.PolicyPermissive), h.Me)

	g.GET("/settings", h.Require(logicv1.PolicyStrict), h.AllSettings)
	g.POST("/settings/password", h.Require(logicv1.PolicyPermissive), h.ChangePassword)
	g.GET("/settings/external-providers", h.Require(logicv1.PolicyPermissive), h.ExternalProviders)
	g.POST("/settings/external-providers", h.Require(logicv1.PolicyPermissive), h.SaveExternalProviders)
}

// startSpan opens the request span and installs its context on c.Request.
func startSpan(c *gin.Context) trace.Span {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.FullPath()),
	))
	c.Request = c.Request.WithContext(ctx)
	return span
}

// LoginPage describes the sign-in form.
func (h *Handler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"action": LoginPath,
		"method": http.MethodPost,
		"fields": []string{"username", "password"},
	})
}

// Login verifies the submitted credentials and opens a session.
func (h *Handler) Login(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Warn().Err(err).Msg("Invalid sign-in request")
		c.JSON(http.StatusBadRequest, domain.Notice{Level: "danger", Message: "Username and password are required"})
		return
	}
	span.SetAttributes(attribute.Bool("request.valid", true))

	token, user, err := h.sessions.SignIn(ctx, req)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, logicv1.ErrInvalidCredentials):
			log.Info().Str("username", req.Username).Msg("Sign-in rejected")
			c.JSON(http.StatusUnauthorized, domain.Notice{Level: "danger", Message: "Incorrect username or password"})
		default:
			log.Error().Err(err).Msg("Sign-in failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	h.setSessionCookie(c, token)
	log.Info().Int("user_id", user.ID).Msg("Sign-in successful")
	c.JSON(http.StatusOK, domain.IdentityResponse{User: user})
}

// Demo opens a session bound to the demo identity.
func (h *Handler) Demo(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	ctx := c.Request.Context()
	token, err := h.sessions.ActivateDemo(ctx)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, logicv1.ErrDemoDisabled) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		logger.FromContext(ctx).Error().Err(err).Msg("Demo activation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.setSessionCookie(c, token)
	demo, _ := domain.DemoIdentity().Display()
	c.JSON(http.StatusOK, domain.IdentityResponse{User: demo, IsDemo: true})
}

// Logout deletes the caller's session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	ctx := c.Request.Context()
	token, _ := c.Cookie(h.cookie.Name)
	if err := h.sessions.SignOut(ctx, token); err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Error().Err(err).Msg("Sign-out failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, domain.Notice{Level: "success", Message: "Signed out"})
}

// Me returns the caller's identity.
func (h *Handler) Me(c *gin.Context) {
	id := identity(c)
	user, _ := id.Display()
	c.JSON(http.StatusOK, domain.IdentityResponse{User: user, IsDemo: id.IsDemo()})
}

// ChangePassword replaces the caller's password.
func (h *Handler) ChangePassword(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	var req domain.ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, domain.Notice{Level: "danger", Message: "Malformed request"})
		return
	}

	err := h.account.ChangePassword(c.Request.Context(), identity(c), req)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, logicv1.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, domain.Notice{Level: "danger", Message: "Current password is incorrect"})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.Notice{Level: "success", Message: "Password changed"})
}

// ExternalProviders returns the provider catalog with the caller's values.
func (h *Handler) ExternalProviders(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	resp, err := h.account.ExternalProviders(c.Request.Context(), identity(c))
	if err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SaveExternalProviders applies the submitted provider values as one batch.
// Both form and JSON object bodies are accepted.
func (h *Handler) SaveExternalProviders(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	form, err := submittedValues(c)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, domain.Notice{Level: "danger", Message: "Malformed request"})
		return
	}

	if err := h.account.SaveExternalProviders(c.Request.Context(), identity(c), form); err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.Notice{Level: "success", Message: "Settings saved"})
}

// AllSettings returns every setting of the caller grouped by domain.
func (h *Handler) AllSettings(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	all, err := h.account.All(c.Request.Context(), identity(c))
	if err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func submittedValues(c *gin.Context) (map[string]string, error) {
	if c.ContentType() == binding.MIMEJSON {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, err
		}
		return body, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	form := make(map[string]string, len(c.Request.PostForm))
	for name, values := range c.Request.PostForm {
		if len(values) > 0 {
			form[name] = values[0]
		}
	}
	return form, nil
}

// writeError maps logic errors to responses.
func (h *Handler) writeError(c *gin.Context, err error) {
	log := logger.FromContext(c.Request.Context())

	switch {
	case errors.Is(err, logicv1.ErrUnauthenticated):
		c.Redirect(http.StatusFound, LoginPath)
	case errors.Is(err, logicv1.ErrDemoForbidden):
		log.Info().Msg("Demo identity attempted a write")
		c.JSON(http.StatusForbidden, domain.Notice{Level: "warning", Message: "This action is not available in demo mode"})
	case errors.Is(err, logicv1.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, domain.Notice{Level: "danger", Message: err.Error()})
	case errors.Is(err, logicv1.ErrUserExists):
		c.JSON(http.StatusConflict, domain.Notice{Level: "danger", Message: "User already exists"})
	default:
		log.Error().Err(err).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.sessions.TTL().Seconds()), "/", "", h.cookie.Secure, true)
}
