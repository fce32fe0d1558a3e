package html

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	sharedcontext "almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/nav"
	"almoxarifado/models"
)

// DefaultBranding is used before the settings row can be read, e.g. on the login screen.
var DefaultBranding = models.SystemConfig{
	HospitalName:   "Hospital",
	PrimaryColor:   "#0d6efd",
	SecondaryColor: "#6c757d",
	NavbarColor:    "#212529",
	SuccessColor:   "#198754",
	FooterText:     "Sistema de Almoxarifado",
}

type LayoutData struct {
	Title    string
	Branding models.SystemConfig
	Nav      *nav.TopNavData
	Status   string
	Error    string
	CSRF     string
}

func Layout(d LayoutData, body templ.Component) templ.Component {
	return View(func(ctx context.Context, b *Writer) {
		cfg := d.Branding
		b.Printf(`<!doctype html><html lang="pt-BR"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.Printf(`<title>%s | %s</title><link rel="stylesheet" href="/assets/app.css"><script src="/assets/app.js" defer></script>`, d.Title, cfg.HospitalName)
		CSRFMeta(b, d.CSRF)
		b.Printf(`<style>:root{--primary:%s;--secondary:%s;--navbar:%s;--success:%s}</style></head><body>`,
			cfg.PrimaryColor, cfg.SecondaryColor, cfg.NavbarColor, cfg.SuccessColor)
		if d.Nav != nil {
			b.Component(ctx, nav.TopNav(*d.Nav))
		}
		b.Raw(`<main class="container">`)
		b.Printf(`<h1>%s</h1>`, d.Title)
		Flash(b, d.Status, d.Error)
		b.Component(ctx, body)
		b.Raw(`</main><footer class="footer">`)
		b.Printf(`<span>%s</span>`, cfg.FooterText)
		if cfg.FooterCompany != "" {
			b.Printf(` <span>%s</span>`, cfg.FooterCompany)
		}
		if cfg.FooterContact != "" {
			b.Printf(` <span>%s</span>`, cfg.FooterContact)
		}
		b.Raw(`</footer>`)
		b.Raw(`</body></html>`)
	})
}

// Render writes body inside the application layout. Flash messages come
// from the status and error query parameters set by redirects.
func Render(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	data := LayoutData{
		Title:    title,
		Branding: DefaultBranding,
		Status:   r.URL.Query().Get("status"),
		Error:    r.URL.Query().Get("error"),
		CSRF:     sharedcontext.GetCSRFTokenFromContext(r.Context()),
	}
	if cfg, ok := sharedcontext.GetSettingsFromContext(r.Context()); ok {
		data.Branding = cfg
	}
	if p, ok := sharedcontext.GetPrincipalFromContext(r.Context()); ok {
		top := nav.BuildTopNavData(p, data.Branding, r.URL.Path)
		data.Nav = &top
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Layout(data, body).Render(r.Context(), w); err != nil {
		log.Error().Err(err).Str("title", title).Msg("render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func Flash(b *Writer, status, errMsg string) {
	if status != "" {
		b.Printf(`<div class="flash flash-ok" role="status">%s</div>`, status)
	}
	if errMsg != "" {
		b.Printf(`<div class="flash flash-error" role="alert">%s</div>`, errMsg)
	}
}
