package context

import (
	"context"

	"almoxarifado/infrastructure/access"
	"almoxarifado/models"
)

type sessionKey struct{}
type principalKey struct{}
type settingsKey struct{}
type csrfKey struct{}

func NewContextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// NewContextWithPrincipal stores the acting user resolved by the auth middleware.
func NewContextWithPrincipal(ctx context.Context, p access.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func GetPrincipalFromContext(ctx context.Context) (access.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(access.Principal)
	return p, ok
}

// NewContextWithSettings stores the branding row used by the page layout.
func NewContextWithSettings(ctx context.Context, cfg models.SystemConfig) context.Context {
	return context.WithValue(ctx, settingsKey{}, cfg)
}

func GetSettingsFromContext(ctx context.Context) (models.SystemConfig, bool) {
	cfg, ok := ctx.Value(settingsKey{}).(models.SystemConfig)
	return cfg, ok
}

func NewContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfKey{}, token)
}

// GetCSRFTokenFromContext returns "" outside the CSRF middleware.
func GetCSRFTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}
