package settings

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"almoxarifado/frontend/shared/context"
	"almoxarifado/frontend/shared/form"
	"almoxarifado/frontend/shared/html"
	"almoxarifado/frontend/shared/respond"
	"almoxarifado/infrastructure/backup"
	"almoxarifado/infrastructure/store"
)

const pagePath = "/app/settings"

// SettingsPageQueryHandler renders the configuration panel and backup list.
func SettingsPageQueryHandler(st *store.Store, backups *backup.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := context.GetPrincipalFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		cfg, err := st.Settings(r.Context())
		if err != nil {
			respond.Page(w, err)
			return
		}
		files, err := backups.List()
		if err != nil {
			respond.Page(w, err)
			return
		}
		html.Render(w, r, "Settings", SettingsPage(cfg, files))
	}
}

func UpdateSettingsCommandHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			respond.WithErrorText(w, r, pagePath, "invalid form data")
			return
		}
		errs := form.Errors{}
		in := store.SettingsInput{
			HospitalName:        form.String(r, "hospital_name"),
			PrimaryColor:        form.String(r, "primary_color"),
			SecondaryColor:      form.String(r, "secondary_color"),
			NavbarColor:         form.String(r, "navbar_color"),
			SuccessColor:        form.String(r, "success_color"),
			FooterText:          form.String(r, "footer_text"),
			FooterCompany:       form.String(r, "footer_company"),
			FooterContact:       form.String(r, "footer_contact"),
			AutoBackup:          form.Bool(r, "auto_backup"),
			BackupFrequencyDays: form.Int(r, "backup_frequency_days", errs),
		}
		if err := errs.Err(); err != nil {
			respond.WithError(w, r, pagePath, err)
			return
		}
		if _, err := st.UpdateSettings(r.Context(), p, in); err != nil {
			respond.WithError(w, r, pagePath, err)
			return
		}
		respond.WithStatus(w, r, pagePath, "settings saved")
	}
}

func UploadLogoCommandHandler(st *store.Store, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, MaxLogoBytes+64<<10)
		if err := r.ParseMultipartForm(MaxLogoBytes); err != nil {
			respond.WithErrorText(w, r, pagePath, "logo upload too large or malformed")
			return
		}
		file, header, err := r.FormFile("logo")
		if err != nil {
			respond.WithErrorText(w, r, pagePath, "choose a logo file")
			return
		}
		defer file.Close()
		name, err := SaveLogo(r.Context(), st, p, uploadDir, header.Filename, file)
		if err != nil {
			respond.WithError(w, r, pagePath, err)
			return
		}
		log.Ctx(r.Context()).Info().Str("file", name).Msg("logo updated")
		respond.WithStatus(w, r, pagePath, "logo updated")
	}
}

// RunBackupCommandHandler snapshots the database and sends the file back.
func RunBackupCommandHandler(backups *backup.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := context.GetPrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		name, err := backups.Run(r.Context(), p)
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("manual backup failed")
			respond.WithErrorText(w, r, pagePath, "backup failed")
			return
		}
		serveBackup(w, r, backups, name)
	}
}

func DownloadBackupQueryHandler(backups *backup.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveBackup(w, r, backups, filepath.Base(chi.URLParam(r, "name")))
	}
}

func serveBackup(w http.ResponseWriter, r *http.Request, backups *backup.Service, name string) {
	path, err := backups.Path(name)
	if err != nil {
		respond.Page(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

// LogoQueryHandler serves the configured logo without authentication so the
// login screen can show it.
func LogoQueryHandler(st *store.Store, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := st.Settings(r.Context())
		if err != nil {
			respond.Page(w, err)
			return
		}
		path := LogoFile(uploadDir, cfg)
		if path == "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, path)
	}
}
