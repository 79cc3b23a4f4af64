package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// Create users table. Accounts are provisioned out of band; the
	// application only reads rows and rewrites passwords.
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username VARCHAR(255) PRIMARY KEY,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(10) NOT NULL DEFAULT 'staff'
		)
	`)
	if err != nil {
		return err
	}

	// Create products table. The key is derived from product number and
	// RFID; rfid is NULL for items registered without a physical tag.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			"key" VARCHAR(255) PRIMARY KEY,
			product_number VARCHAR(255) NOT NULL,
			rfid VARCHAR(50),
			price BIGINT NOT NULL,
			registered_at BIGINT NOT NULL,
			note TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return err
	}

	// Create logs table. ts_key has second precision, so a write in the
	// same second replaces the previous entry.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS logs (
			ts_key VARCHAR(32) PRIMARY KEY,
			actor VARCHAR(255) NOT NULL,
			action VARCHAR(32) NOT NULL,
			product_number VARCHAR(255) NOT NULL,
			rfid VARCHAR(50),
			price BIGINT
		)
	`)
	if err != nil {
		return err
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_product_number ON products(product_number)",
		"CREATE INDEX IF NOT EXISTS idx_products_registered_at ON products(registered_at)",
	}

	for _, idx := range indexes {
		_, err = db.Exec(idx)
		if err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
