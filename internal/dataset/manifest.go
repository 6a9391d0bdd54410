package dataset

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// schema.sql creates the samples table.
//
//go:embed schema.sql
var schemaSQL string

// Sample is one generated image as recorded in the manifest.
type Sample struct {
	SampleID    string
	Seq         int
	Path        string
	SizeX       int
	SizeY       int
	SizeZ       int
	Carved      int
	CreatedAtNs int64
}

// Manifest persists generated samples in a SQLite database.
type Manifest struct {
	db *sql.DB
}

// OpenManifest opens (or creates) the manifest database at path.
func OpenManifest(path string) (*Manifest, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create manifest schema: %w", err)
	}
	return &Manifest{db: db}, nil
}

// Close closes the database.
func (m *Manifest) Close() error {
	return m.db.Close()
}

// Insert records a sample. If SampleID is empty a new UUID is generated;
// if CreatedAtNs is zero the current time is used.
func (m *Manifest) Insert(s *Sample) error {
	if s.SampleID == "" {
		s.SampleID = uuid.New().String()
	}
	if s.CreatedAtNs == 0 {
		s.CreatedAtNs = time.Now().UnixNano()
	}

	query := `
		INSERT INTO samples (
			sample_id, seq, path, size_x, size_y, size_z, carved, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := m.db.Exec(query,
		s.SampleID, s.Seq, s.Path,
		s.SizeX, s.SizeY, s.SizeZ,
		s.Carved, s.CreatedAtNs,
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// Samples returns every recorded sample ordered by sequence number.
func (m *Manifest) Samples() ([]Sample, error) {
	rows, err := m.db.Query(`
		SELECT sample_id, seq, path, size_x, size_y, size_z, carved, created_at_ns
		FROM samples
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.SampleID, &s.Seq, &s.Path, &s.SizeX, &s.SizeY, &s.SizeZ, &s.Carved, &s.CreatedAtNs); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
