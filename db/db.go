// Package db is the optional PostgreSQL sink for scraped materials.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/lib/pq"

	"github.com/saitej13sai/donizo-material-scraper/models"
)

// DB wraps the database connection.
type DB struct {
	conn *sql.DB
}

// New opens a connection and makes sure the materials table exists.
// An empty dsn falls back to DATABASE_URL or the DB_* component vars.
func New(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = dsnFromEnv()
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func dsnFromEnv() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "materials")
	password := os.Getenv("DB_PASSWORD")
	dbname := getEnvOrDefault("DB_NAME", "materials")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the materials table if it doesn't exist. A record
// is identified by (id, scraped_at): a later run appends a new row for
// the same product instead of mutating the old one.
func (db *DB) initSchema() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS materials (
			id           VARCHAR(16) NOT NULL,
			site         VARCHAR(50) NOT NULL,
			category     VARCHAR(50) NOT NULL,
			name         TEXT        NOT NULL,
			brand        TEXT,
			price_value  DOUBLE PRECISION,
			currency     VARCHAR(8),
			price_raw    TEXT,
			unit         VARCHAR(16),
			url          TEXT        NOT NULL,
			image_url    TEXT,
			availability TEXT,
			scraped_at   TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (id, scraped_at)
		);

		CREATE INDEX IF NOT EXISTS idx_materials_site_category ON materials(site, category);
		CREATE INDEX IF NOT EXISTS idx_materials_price_value   ON materials(price_value);
	`)
	if err != nil {
		return fmt.Errorf("failed to create materials table: %w", err)
	}
	return nil
}

// SaveMaterials batch-inserts one run's records. Re-inserting the same
// (id, scraped_at) is a no-op, so re-running an export is safe.
func (db *DB) SaveMaterials(materials []models.Material) error {
	if len(materials) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(materials); i += batchSize {
		end := i + batchSize
		if end > len(materials) {
			end = len(materials)
		}
		if err := db.insertBatch(materials[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) insertBatch(batch []models.Material) error {
	const cols = 13
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, m := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var priceValue, currency, priceRaw interface{}
		if m.Price != nil {
			priceValue = m.Price.Value
			currency = m.Price.Currency
			priceRaw = m.Price.Raw
		}
		valueArgs = append(valueArgs,
			m.ID, m.Site, m.Category, m.Name, m.Brand,
			priceValue, currency, priceRaw,
			m.Unit, m.URL, m.ImageURL, m.Availability, m.ScrapedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO materials (id, site, category, name, brand, price_value, currency, price_raw, unit, url, image_url, availability, scraped_at)
		VALUES %s
		ON CONFLICT (id, scraped_at) DO NOTHING
	`, strings.Join(valueStrings, ","))

	if _, err := db.conn.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert materials batch: %w", err)
	}
	return nil
}
