package login

import (
	"context"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/models"
)

func LoginScreen(cfg models.SystemConfig, csrf, errorMessage, status string) templ.Component {
	body := html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<form method="post" action="/login" class="card login">`)
		html.CSRFInput(b, csrf)
		if cfg.LogoPath != "" {
			b.Raw(`<img src="/branding/logo" alt="" class="logo">`)
		}
		html.Input(b, "Username", "username", "text", "", true)
		html.Input(b, "Password", "password", "password", "", true)
		b.Raw(`<button type="submit" class="primary">Sign in</button></form>`)
	})
	return html.Layout(html.LayoutData{
		Title:    "Sign in",
		Branding: cfg,
		Status:   status,
		Error:    errorMessage,
		CSRF:     csrf,
	}, body)
}
