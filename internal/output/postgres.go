package output

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	_ "github.com/lib/pq"

	"projectlens/internal/models"
)

// PostgresStore mirrors the JSON artifacts into a relational table so
// records can be queried across runs
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig holds database connection settings
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// NewPostgresStore opens and pings a PostgreSQL connection
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// newPostgresStoreWithDB is used by tests to inject a mock connection
func newPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// UpsertProject inserts or updates a project record keyed by name. The
// full record is kept as JSONB alongside the queryable columns.
func (s *PostgresStore) UpsertProject(p *models.Project) error {
	record, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project %s: %w", p.Name, err)
	}

	var version string
	if p.LatestRelease != nil {
		version = p.LatestRelease.Version
	}

	query := `
		INSERT INTO projects (
			name, shortdesc, description, category, programming_language,
			homepage, download_page, logo, latest_version,
			extracted_features, record, collected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (name) DO UPDATE SET
			shortdesc = EXCLUDED.shortdesc,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			programming_language = EXCLUDED.programming_language,
			homepage = EXCLUDED.homepage,
			download_page = EXCLUDED.download_page,
			logo = EXCLUDED.logo,
			latest_version = EXCLUDED.latest_version,
			extracted_features = EXCLUDED.extracted_features,
			record = EXCLUDED.record,
			collected_at = EXCLUDED.collected_at`

	_, err = s.db.Exec(query,
		p.Name, p.ShortDesc, p.Description, p.Category, p.ProgrammingLanguage,
		p.Homepage, p.DownloadPage, p.Logo, version,
		pq.Array(p.ExtractedFeatures), record, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert project %s: %w", p.Name, err)
	}
	return nil
}

// SaveAll upserts every record and returns the first error with how
// many records were written before it
func (s *PostgresStore) SaveAll(projects []*models.Project) (int, error) {
	for i, p := range projects {
		if err := s.UpsertProject(p); err != nil {
			return i, err
		}
	}
	return len(projects), nil
}
