package adoptionserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/accesscontrol"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// Security authenticates bearer tokens and enforces RBAC on protected routes.
type Security struct {
	verifier *auth.Verifier
	rbac     *accesscontrol.RBAC
	profiles userports.Service
	logger   *slog.Logger
}

// SecurityOption customises Security.
type SecurityOption func(*Security)

// WithProfileRecorder records every authenticated identity in the user
// directory so applications can show applicant names.
func WithProfileRecorder(profiles userports.Service) SecurityOption {
	return func(s *Security) { s.profiles = profiles }
}

// WithSecurityLogger sets the logger used for profile recording failures.
func WithSecurityLogger(logger *slog.Logger) SecurityOption {
	return func(s *Security) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSecurity(verifier *auth.Verifier, rbac *accesscontrol.RBAC, opts ...SecurityOption) *Security {
	s := &Security{verifier: verifier, rbac: rbac, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Authenticate verifies the Authorization header and stores the identity on
// the request context.
func (s *Security) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s == nil || s.verifier == nil {
			apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail("authentication is not configured"))
			c.Abort()
			return
		}
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			respondUnauthorized(c, err)
			return
		}
		identity, err := s.verifier.Verify(raw)
		if err != nil {
			respondUnauthorized(c, err)
			return
		}
		ctx := auth.WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)
		s.remember(ctx, identity)
		c.Next()
	}
}

// Authorize rejects callers whose role lacks act on obj.
func (s *Security) Authorize(obj accesscontrol.Object, act accesscontrol.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.FromContext(c.Request.Context())
		if !ok {
			respondUnauthorized(c, auth.ErrMissingToken)
			return
		}
		allowed, err := s.rbac.Allowed(identity.Role, obj, act)
		if err != nil {
			apiResponder.RespondError(c, err)
			c.Abort()
			return
		}
		if !allowed {
			apierrors.Respond(c, apierrors.ErrForbidden.WithDetail("insufficient role for this operation"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Security) remember(ctx context.Context, identity auth.Identity) {
	if s.profiles == nil || identity.Name == "" {
		return
	}
	_, err := s.profiles.Remember(ctx, userports.RememberInput{
		ID:    identity.UserID,
		Name:  identity.Name,
		Email: identity.Email,
		Role:  identity.Role,
	})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record user profile",
			slog.String("user.id", identity.UserID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func respondUnauthorized(c *gin.Context, err error) {
	detail := "invalid token"
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		detail = "missing bearer token"
	case errors.Is(err, auth.ErrTokenExpired):
		detail = "token expired"
	}
	apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail(detail))
	c.Abort()
}

func currentIdentity(c *gin.Context) (auth.Identity, bool) {
	return auth.FromContext(c.Request.Context())
}
