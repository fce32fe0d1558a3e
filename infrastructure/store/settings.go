package store

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"almoxarifado/infrastructure/access"
	"almoxarifado/infrastructure/audit"
	"almoxarifado/infrastructure/validation"
	"almoxarifado/models"
)

const systemConfigID = 1

// SettingsInput is the editable part of the system configuration.
type SettingsInput struct {
	HospitalName        string `form:"hospital_name" validate:"required,max=160"`
	PrimaryColor        string `form:"primary_color" validate:"color"`
	SecondaryColor      string `form:"secondary_color" validate:"color"`
	NavbarColor         string `form:"navbar_color" validate:"color"`
	SuccessColor        string `form:"success_color" validate:"color"`
	FooterText          string `form:"footer_text" validate:"max=255"`
	FooterCompany       string `form:"footer_company" validate:"max=160"`
	FooterContact       string `form:"footer_contact" validate:"max=160"`
	AutoBackup          bool   `form:"auto_backup"`
	BackupFrequencyDays int    `form:"backup_frequency_days" validate:"gte=1,lte=365"`
}

// Settings loads the singleton configuration row.
func (s *Store) Settings(ctx context.Context) (models.SystemConfig, error) {
	var cfg models.SystemConfig
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&cfg).Where("sc.id = ?", systemConfigID).Scan(ctx)
	})
	return cfg, notFound(err, "system config")
}

func (s *Store) UpdateSettings(ctx context.Context, actor access.Principal, in SettingsInput) (models.SystemConfig, error) {
	if err := requireCap(actor, access.CapManageSystem); err != nil {
		return models.SystemConfig{}, err
	}
	in.HospitalName = clean(in.HospitalName)
	in.FooterText = clean(in.FooterText)
	in.FooterCompany = clean(in.FooterCompany)
	in.FooterContact = clean(in.FooterContact)
	if err := validation.Struct(in); err != nil {
		return models.SystemConfig{}, err
	}
	var after models.SystemConfig
	err := s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.SystemConfig
		if err := tx.NewSelect().Model(&before).Where("sc.id = ?", systemConfigID).Scan(ctx); err != nil {
			return notFound(err, "system config")
		}
		after = before
		after.HospitalName = in.HospitalName
		after.PrimaryColor = in.PrimaryColor
		after.SecondaryColor = in.SecondaryColor
		after.NavbarColor = in.NavbarColor
		after.SuccessColor = in.SuccessColor
		after.FooterText = in.FooterText
		after.FooterCompany = in.FooterCompany
		after.FooterContact = in.FooterContact
		after.AutoBackup = in.AutoBackup
		after.BackupFrequencyDays = in.BackupFrequencyDays
		after.UpdatedAt = s.now().UTC()
		if _, err := tx.NewUpdate().Model(&after).
			Column("hospital_name", "primary_color", "secondary_color", "navbar_color", "success_color",
				"footer_text", "footer_company", "footer_contact", "auto_backup", "backup_frequency_days", "updated_at").
			WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionUpdate, audit.EntityConfig, systemConfigID, before, after)
	})
	return after, err
}

// SetLogo records the stored logo file name.
func (s *Store) SetLogo(ctx context.Context, actor access.Principal, path string) error {
	if err := requireCap(actor, access.CapManageSystem); err != nil {
		return err
	}
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().Model((*models.SystemConfig)(nil)).
			Set("logo_path = ?", path).
			Set("updated_at = ?", s.now().UTC()).
			Where("id = ?", systemConfigID).Exec(ctx); err != nil {
			return fmt.Errorf("set logo: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionUpdate, audit.EntityConfig, systemConfigID, nil, map[string]string{"logo_path": path})
	})
}

// MarkBackup stamps last_backup_at after a successful snapshot.
func (s *Store) MarkBackup(ctx context.Context, actor access.Principal, at time.Time, file string) error {
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().Model((*models.SystemConfig)(nil)).
			Set("last_backup_at = ?", at.UTC()).
			Where("id = ?", systemConfigID).Exec(ctx); err != nil {
			return fmt.Errorf("mark backup: %w", err)
		}
		return s.audit.Write(ctx, tx, actor.UserID, audit.ActionBackup, audit.EntityConfig, systemConfigID, nil, map[string]string{"file": file})
	})
}

// BackupDue reports whether automatic backups are enabled and the last one
// is older than the configured frequency.
func BackupDue(cfg models.SystemConfig, now time.Time) bool {
	if !cfg.AutoBackup {
		return false
	}
	if cfg.LastBackupAt == nil {
		return true
	}
	days := cfg.BackupFrequencyDays
	if days <= 0 {
		days = 7
	}
	return now.Sub(*cfg.LastBackupAt) >= time.Duration(days)*24*time.Hour
}
