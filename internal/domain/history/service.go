package history

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ehr/medhistory/internal/platform/middleware"
)

const recordSeparatorWidth = 30

// Service provides the medical-history operations on top of a Repository.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new medical-history service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AddPatient appends a patient and its records to the stored document.
// The sequence is load, append, save; it is not atomic.
func (s *Service) AddPatient(ctx context.Context, p Patient, records []Record) error {
	return s.AddEntries(ctx, []Entry{p.ToEntry(records)})
}

// AddEntries appends already serialized patients in one load/save cycle.
func (s *Service) AddEntries(ctx context.Context, entries []Entry) error {
	patients, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	patients = append(patients, entries...)
	if err := s.repo.Save(ctx, patients); err != nil {
		return err
	}
	for _, e := range entries {
		s.logger.Debug().
			Str("patient_id", e.PatientID).
			Int("records", len(e.Records)).
			Msg("patient added")
	}
	return nil
}

// ListPatients returns the stored patients in insertion order.
func (s *Service) ListPatients(ctx context.Context) ([]Entry, error) {
	return s.repo.Load(ctx)
}

// DisplayPatients prints every patient followed by its known records.
// Records with an unknown type are skipped.
func (s *Service) DisplayPatients(ctx context.Context, w io.Writer) error {
	return middleware.Timed(s.logger, "display_patients", func() error {
		patients, err := s.repo.Load(ctx)
		if err != nil {
			return err
		}
		separator := strings.Repeat("-", recordSeparatorWidth)
		for _, e := range patients {
			e.Patient.Display(w)
			fmt.Fprintln(w, "\nMedical Records:")
			for _, r := range e.DecodedRecords() {
				r.Display(w)
				fmt.Fprintln(w, separator)
			}
		}
		return nil
	})
}
