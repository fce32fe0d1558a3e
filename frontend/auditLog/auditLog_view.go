package auditlog

import (
	"context"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
)

func AuditPage(d PageData) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<form method="get" action="/app/admin/audit" class="filters">`)
		html.Select(b, "Entity", "entity_type", "All", d.EntityTypes, d.EntityType)
		html.Input(b, "ID", "entity_id", "text", d.EntityID, false)
		b.Raw(`<button type="submit">Filter</button></form>`)

		if len(d.Rows) == 0 {
			b.Raw(`<p class="empty">No audit entries.</p>`)
			return
		}
		b.Raw(`<table class="grid audit"><thead><tr><th>When</th><th>User</th><th>Action</th><th>Entity</th><th>Before</th><th>After</th></tr></thead><tbody>`)
		for _, row := range d.Rows {
			b.Printf(`<tr><td>%s</td><td>%s</td><td>%s</td>`, html.DateTime(row.CreatedAt), row.Actor, row.Action)
			b.Printf(`<td><a href="/app/admin/audit?entity_type=%s&amp;entity_id=%s">%s #%s</a></td>`, row.EntityType, row.EntityID, row.EntityType, row.EntityID)
			b.Printf(`<td><code>%s</code></td><td><code>%s</code></td></tr>`, row.BeforeJSON, row.AfterJSON)
		}
		b.Raw(`</tbody></table>`)
	})
}
