package settings

import (
	"context"
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"almoxarifado/frontend/shared/html"
	"almoxarifado/infrastructure/backup"
	"almoxarifado/models"
)

func SettingsPage(cfg models.SystemConfig, files []backup.File) templ.Component {
	return html.View(func(ctx context.Context, b *html.Writer) {
		b.Raw(`<section class="split"><form method="post" action="/app/settings" class="card"><h2>Branding</h2>`)
		html.Input(b, "Hospital name", "hospital_name", "text", cfg.HospitalName, true)
		html.Input(b, "Primary color", "primary_color", "color", cfg.PrimaryColor, true)
		html.Input(b, "Secondary color", "secondary_color", "color", cfg.SecondaryColor, true)
		html.Input(b, "Navbar color", "navbar_color", "color", cfg.NavbarColor, true)
		html.Input(b, "Success color", "success_color", "color", cfg.SuccessColor, true)
		html.Input(b, "Footer text", "footer_text", "text", cfg.FooterText, false)
		html.Input(b, "Footer company", "footer_company", "text", cfg.FooterCompany, false)
		html.Input(b, "Footer contact", "footer_contact", "text", cfg.FooterContact, false)
		b.Raw(`<h2>Backups</h2>`)
		html.Checkbox(b, "Automatic backups", "auto_backup", cfg.AutoBackup)
		html.Input(b, "Backup every (days)", "backup_frequency_days", "number", strconv.Itoa(cfg.BackupFrequencyDays), true)
		b.Raw(`<button type="submit" class="primary">Save settings</button></form>`)

		b.Raw(`<div><form method="post" action="/app/settings/logo" enctype="multipart/form-data" class="card"><h2>Logo</h2>`)
		if cfg.LogoPath != "" {
			b.Raw(`<img src="/branding/logo" alt="" class="logo">`)
		}
		b.Raw(`<input type="file" name="logo" accept=".png,.jpg,.jpeg,.svg,.gif" required>`)
		b.Raw(`<button type="submit">Upload</button></form>`)

		b.Raw(`<div class="card"><h2>Database snapshots</h2>`)
		b.Printf(`<p>Last backup: %s</p>`, html.Date(cfg.LastBackupAt))
		b.Raw(`<form method="post" action="/app/settings/backup"><button type="submit" class="primary">Back up now and download</button></form>`)
		if len(files) == 0 {
			b.Raw(`<p class="empty">No backups yet.</p>`)
		} else {
			b.Raw(`<table class="grid"><thead><tr><th>File</th><th>Taken</th><th class="num">Size</th></tr></thead><tbody>`)
			for _, f := range files {
				b.Printf(`<tr><td><a href="/app/settings/backups/%s">%s</a></td><td>%s</td><td class="num">%s</td></tr>`,
					f.Name, f.Name, html.DateTime(f.ModTime), fileSize(f.Size))
			}
			b.Raw(`</tbody></table>`)
		}
		b.Raw(`</div></div></section>`)
	})
}

func fileSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
