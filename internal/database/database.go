package database

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// migration source
	_ "github.com/lib/pq"                                // PostgreSQL driver

	"curtain_shop_backend/pkg/utils"
)

// Config holds the PostgreSQL connection parameters.
type Config struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string // empty disables migrations on startup
}

// ConfigFromEnv builds a Config from environment variables with local
// development defaults.
func ConfigFromEnv() Config {
	return Config{
		Host:           utils.Getenv("DB_HOST", "localhost"),
		Port:           utils.Getenv("DB_PORT", "5432"),
		User:           utils.Getenv("DB_USER", "curtain_shop_user"),
		Password:       utils.Getenv("DB_PASSWORD", "curtain_shop_password"),
		DBName:         utils.Getenv("DB_NAME", "curtain_shop_db"),
		SSLMode:        utils.Getenv("DB_SSLMODE", "disable"),
		MigrationsPath: utils.Getenv("DB_MIGRATIONS_PATH", "migrations"),
	}
}

// InitDB opens the connection pool, verifies it with a ping and applies
// pending migrations.
func InitDB(cfg Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	utils.LogInfo("Connected to PostgreSQL", map[string]interface{}{"host": cfg.Host, "dbname": cfg.DBName})

	if cfg.MigrationsPath != "" {
		if err := applyMigrations(db, cfg.DBName, cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}
	return db, nil
}

func applyMigrations(db *sql.DB, dbName, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, dbName, driver)
	if err != nil {
		return fmt.Errorf("failed to initialize migration instance: %w", err)
	}

	err = m.Up()
	if err == migrate.ErrNoChange {
		utils.LogInfo("No new migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	utils.LogInfo("New migrations applied successfully")
	return nil
}
