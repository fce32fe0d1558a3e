package nav

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"almoxarifado/infrastructure/access"
	"almoxarifado/models"
)

type Link struct {
	Label  string
	Href   string
	Active bool
}

// TopNavData is shared with page renderers.
type TopNavData struct {
	Username     string
	Level        string
	HospitalName string
	HasLogo      bool
	Links        []Link
}

type entry struct {
	label string
	href  string
	needs access.Capability
}

var entries = []entry{
	{"Dashboard", "/app/dashboard", access.CapAuthenticated},
	{"Items", "/app/items", access.CapAuthenticated},
	{"Movements", "/app/movements", access.CapAuthenticated},
	{"Reports", "/app/reports", access.CapAuthenticated},
	{"Warehouses", "/app/warehouses", access.CapAuthenticated},
	{"Categories", "/app/categories", access.CapAuthenticated},
	{"Sectors", "/app/sectors", access.CapAuthenticated},
	{"Suppliers", "/app/suppliers", access.CapAuthenticated},
	{"Users", "/app/admin/users", access.CapManageUsers},
	{"Audit", "/app/admin/audit", access.CapManageSystem},
	{"Settings", "/app/settings", access.CapManageSystem},
}

// BuildTopNavData lists the menu entries the principal may open.
func BuildTopNavData(p access.Principal, cfg models.SystemConfig, currentPath string) TopNavData {
	caps := p.Capabilities()
	data := TopNavData{
		Username:     p.Username,
		Level:        p.Level,
		HospitalName: cfg.HospitalName,
		HasLogo:      cfg.LogoPath != "",
	}
	for _, e := range entries {
		if !caps.Has(e.needs) {
			continue
		}
		data.Links = append(data.Links, Link{
			Label:  e.label,
			Href:   e.href,
			Active: currentPath == e.href || strings.HasPrefix(currentPath, e.href+"/"),
		})
	}
	return data
}

func TopNav(d TopNavData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString(`<nav class="topnav"><a class="brand" href="/app/dashboard">`)
		if d.HasLogo {
			sb.WriteString(`<img src="/branding/logo" alt="" height="32"> `)
		}
		sb.WriteString(templ.EscapeString(d.HospitalName))
		sb.WriteString(`</a><ul>`)
		for _, l := range d.Links {
			class := ""
			if l.Active {
				class = ` class="active"`
			}
			fmt.Fprintf(&sb, `<li><a href="%s"%s>%s</a></li>`, templ.EscapeString(l.Href), class, templ.EscapeString(l.Label))
		}
		sb.WriteString(`</ul><form class="search" method="get" action="/app/search"><input type="search" name="q" placeholder="barcode, name or lot"></form>`)
		fmt.Fprintf(&sb, `<span class="user"><a href="/app/account/password">%s</a> (%s)</span>`,
			templ.EscapeString(d.Username), templ.EscapeString(d.Level))
		sb.WriteString(`<form method="post" action="/logout" class="inline"><button type="submit">Sign out</button></form></nav>`)
		_, err := io.WriteString(w, sb.String())
		return err
	})
}
