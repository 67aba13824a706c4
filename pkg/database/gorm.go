package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Verbose logs every statement. Otherwise only slow queries and errors.
	Verbose bool
}

func (c GormConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

func getLogger(verbose bool) logger.Interface {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func NewGormDB(cfg GormConfig) (*gorm.DB, error) {
	return Open(cfg.DSN(), cfg.Verbose)
}

func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	return Open(dsn, false)
}

func Open(dsn string, verbose bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(verbose),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Extensions needed by the schema: vector for facility embeddings,
// pgcrypto for gen_random_uuid().
var Extensions = []string{"vector", "pgcrypto"}

func EnableExtensions(db *gorm.DB) error {
	for _, ext := range Extensions {
		if err := db.Exec(fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %q", ext)).Error; err != nil {
			return fmt.Errorf("enable extension %s: %w", ext, err)
		}
	}
	return nil
}

// Migrate enables the extensions and auto-migrates the given models.
func Migrate(db *gorm.DB, models ...interface{}) error {
	if err := EnableExtensions(db); err != nil {
		return err
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
