package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"sharedepot/internal/config"
	"sharedepot/internal/middleware"
	"sharedepot/internal/models"

	"gorm.io/gorm"
)

// Schema modes selected by DB_SCHEMA_MODE.
const (
	// SchemaModeHybrid applies pending migrations everywhere and also runs
	// AutoMigrate outside production.
	SchemaModeHybrid = "hybrid"
	// SchemaModeMigrate applies pending migrations only.
	SchemaModeMigrate = "migrate"
	// SchemaModeVerify changes nothing and fails when the schema is incomplete.
	SchemaModeVerify = "verify"
)

// likeUniqueIndex backs like-toggle convergence: a second insert for the
// same (user, post) must fail.
const likeUniqueIndex = "idx_user_post"

// Migration is one versioned, forward-only schema step. Down undoes it for
// the migrate tool.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
	Down    func(tx *gorm.DB) error
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

// MigrationLog records an applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationLog) TableName() string {
	return "migration_logs"
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_core_tables",
		Up: func(tx *gorm.DB) error {
			// Databases built by AutoMigrate before the log existed keep their tables.
			for _, model := range []interface{}{&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}} {
				if tx.Migrator().HasTable(model) {
					continue
				}
				if err := tx.Migrator().CreateTable(model); err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{})
		},
	},
	{
		Version: 2,
		Name:    "ensure_like_unique_index",
		Up: func(tx *gorm.DB) error {
			if tx.Migrator().HasIndex(&models.Like{}, likeUniqueIndex) {
				return nil
			}
			return tx.Migrator().CreateIndex(&models.Like{}, likeUniqueIndex)
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropIndex(&models.Like{}, likeUniqueIndex)
		},
	},
}

// Migrations returns the registered migrations in version order.
func Migrations() []Migration {
	out := append([]Migration(nil), migrations...)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// SchemaStatus describes what ApplySchema would do.
type SchemaStatus struct {
	Mode               string
	Environment        string
	WillMigrate        bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	Pending            []Migration
}

func schemaMode(cfg *config.Config) string {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		return SchemaModeHybrid
	}
	return mode
}

func schemaPolicy(cfg *config.Config) (migrate, auto bool, err error) {
	switch mode := schemaMode(cfg); mode {
	case SchemaModeHybrid:
		return true, !cfg.IsProduction(), nil
	case SchemaModeMigrate:
		return true, false, nil
	case SchemaModeVerify:
		return false, false, nil
	default:
		return false, false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// ApplySchema brings the schema up to date according to DB_SCHEMA_MODE and
// then checks that every table and the like unique index exist.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	migrate, auto, err := schemaPolicy(cfg)
	if err != nil {
		return err
	}

	if migrate {
		if err := RunMigrations(ctx, db); err != nil {
			return err
		}
	}
	if auto {
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", schemaMode(cfg)), slog.String("env", cfg.Env))
		if err := Migrate(db.WithContext(ctx)); err != nil {
			return err
		}
	}
	return VerifySchema(db.WithContext(ctx))
}

// VerifySchema fails when a table or the like unique index is missing.
func VerifySchema(db *gorm.DB) error {
	m := db.Migrator()
	var missing []string
	for _, model := range []interface{}{&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}} {
		if !m.HasTable(model) {
			missing = append(missing, fmt.Sprintf("table for %T", model))
		}
	}
	if len(missing) == 0 && !m.HasIndex(&models.Like{}, likeUniqueIndex) {
		missing = append(missing, "index "+likeUniqueIndex)
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema incomplete, missing %s (run cmd/migrate up)", strings.Join(missing, ", "))
	}
	return nil
}

// RunMigrations applies every pending migration, each in its own
// transaction together with its log row.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("ensure migration log: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	if err := checkKnownVersions(applied); err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, m := range Migrations() {
		if done[m.Version] {
			continue
		}
		middleware.Logger.Info("Applying migration", slog.String("migration", m.String()))
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m, err)
		}
	}
	return nil
}

// RollbackMigration undoes an applied migration and removes its log row.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	db = db.WithContext(ctx)
	var target *Migration
	for _, m := range Migrations() {
		if m.Version == version {
			target = &m
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	var entry MigrationLog
	if err := db.First(&entry, "version = ?", version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("migration %s has not been applied", target)
		}
		return err
	}

	middleware.Logger.Info("Rolling back migration", slog.String("migration", target.String()))
	return db.Transaction(func(tx *gorm.DB) error {
		if err := target.Down(tx); err != nil {
			return fmt.Errorf("roll back migration %s: %w", target, err)
		}
		return tx.Delete(&MigrationLog{}, "version = ?", version).Error
	})
}

// GetSchemaStatus reports the mode, applied versions and pending migrations.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	migrate, auto, err := schemaPolicy(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{
		Mode:               schemaMode(cfg),
		Environment:        cfg.Env,
		WillMigrate:        migrate,
		WillRunAutoMigrate: auto,
	}

	db = db.WithContext(ctx)
	if db.Migrator().HasTable(&MigrationLog{}) {
		if status.AppliedVersions, err = appliedVersions(db); err != nil {
			return nil, err
		}
	}
	done := make(map[int]bool, len(status.AppliedVersions))
	for _, v := range status.AppliedVersions {
		done[v] = true
	}
	for _, m := range Migrations() {
		if !done[m.Version] {
			status.Pending = append(status.Pending, m)
		}
	}
	return status, nil
}

func appliedVersions(db *gorm.DB) ([]int, error) {
	var versions []int
	if err := db.Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	return versions, nil
}

func checkKnownVersions(applied []int) error {
	known := make(map[int]bool, len(migrations))
	for _, m := range migrations {
		known[m.Version] = true
	}
	var unknown []string
	for _, v := range applied {
		if !known[v] {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("migration_logs contains versions unknown to this build: %s", strings.Join(unknown, ", "))
	}
	return nil
}
