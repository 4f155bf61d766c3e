package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ehr/medhistory/internal/platform/middleware"
)

// FileRepository keeps the whole document in one JSON file. The file is
// opened, fully read or written, and closed on every call. There is no
// locking; concurrent writers race and the last one wins.
type FileRepository struct {
	path   string
	logger zerolog.Logger
}

// NewFileRepository creates a repository backed by the file at path.
func NewFileRepository(path string, logger zerolog.Logger) *FileRepository {
	return &FileRepository{path: path, logger: logger}
}

// Path returns the backing file path.
func (r *FileRepository) Path() string { return r.path }

// Load reads the document and returns its patients. A missing file is an
// empty dataset, not an error. Malformed JSON is returned as an error.
func (r *FileRepository) Load(ctx context.Context) ([]Entry, error) {
	return middleware.TimedResult(r.logger, "load_data", func() ([]Entry, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(r.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				r.logger.Info().
					Str("path", r.path).
					Msg("no existing data file found, starting with an empty database")
				return []Entry{}, nil
			}
			return nil, fmt.Errorf("read %s: %w", r.path, err)
		}

		var doc Document
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", r.path, err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: unexpected data after the document", r.path)
		}

		if doc.Patients == nil {
			return []Entry{}, nil
		}
		return doc.Patients, nil
	})
}

// Save overwrites the file with {"patients": patients}, indented.
func (r *FileRepository) Save(ctx context.Context, patients []Entry) error {
	return middleware.Timed(r.logger, "save_data", func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc := Document{Patients: make([]Entry, 0, len(patients))}
		for _, p := range patients {
			if p.Records == nil {
				p.Records = []RecordData{}
			}
			doc.Patients = append(doc.Patients, p)
		}

		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode document: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		if err := os.WriteFile(r.path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", r.path, err)
		}
		return nil
	})
}
