package settings

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/store"
	"almoxarifado/infrastructure/validation"
	"almoxarifado/models"
)

// MaxLogoBytes bounds uploaded logo files.
const MaxLogoBytes = 2 << 20

var logoExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".svg": true, ".gif": true}

// SaveLogo stores the uploaded logo as logo<ext> under uploadDir, replacing
// any previous logo, and records the file name in the system config.
func SaveLogo(ctx context.Context, st *store.Store, actor access.Principal, uploadDir, filename string, src io.Reader) (string, error) {
	if !actor.Capabilities().ManageSystem {
		return "", models.ErrPermissionDenied
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !logoExtensions[ext] {
		return "", validation.Field("logo", "must be a png, jpg, jpeg, svg or gif file")
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := "logo" + ext
	tmp, err := os.CreateTemp(uploadDir, "logo-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create logo file: %w", err)
	}
	defer os.Remove(tmp.Name())
	n, err := io.Copy(tmp, io.LimitReader(src, MaxLogoBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write logo file: %w", err)
	}
	if n == 0 {
		return "", validation.Field("logo", "is empty")
	}
	if n > MaxLogoBytes {
		return "", validation.Field("logo", "is larger than 2 MB")
	}
	for other := range logoExtensions {
		if other != ext {
			_ = os.Remove(filepath.Join(uploadDir, "logo"+other))
		}
	}
	if err := os.Rename(tmp.Name(), filepath.Join(uploadDir, name)); err != nil {
		return "", fmt.Errorf("store logo file: %w", err)
	}
	if err := st.SetLogo(ctx, actor, name); err != nil {
		return "", err
	}
	return name, nil
}

// LogoFile resolves the configured logo to a readable path, or "" when unset
// or missing on disk.
func LogoFile(uploadDir string, cfg models.SystemConfig) string {
	if cfg.LogoPath == "" || filepath.Base(cfg.LogoPath) != cfg.LogoPath {
		return ""
	}
	p := filepath.Join(uploadDir, cfg.LogoPath)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
