package menu

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ehr/medhistory/internal/domain/history"
)

type fakeStore struct {
	added      []history.Entry
	displays   int
	displayErr error
}

func (f *fakeStore) AddPatient(_ context.Context, p history.Patient, records []history.Record) error {
	f.added = append(f.added, p.ToEntry(records))
	return nil
}

func (f *fakeStore) DisplayPatients(_ context.Context, w io.Writer) error {
	f.displays++
	if f.displayErr != nil {
		return f.displayErr
	}
	io.WriteString(w, "<patients>\n")
	return nil
}

func runMenu(t *testing.T, store Store, input string) string {
	t.Helper()
	var out bytes.Buffer
	m := New(store, strings.NewReader(input), &out, zerolog.Nop())
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return out.String()
}

func TestRun_Exit(t *testing.T) {
	out := runMenu(t, &fakeStore{}, "3\n")

	if !strings.Contains(out, "Medical History Management") {
		t.Errorf("expected menu header, got %q", out)
	}
	if !strings.HasSuffix(out, "Exiting...\n") {
		t.Errorf("expected exit message, got %q", out)
	}
}

func TestRun_View(t *testing.T) {
	store := &fakeStore{}
	out := runMenu(t, store, "1\n3\n")

	if store.displays != 1 {
		t.Errorf("expected 1 display, got %d", store.displays)
	}
	if !strings.Contains(out, "<patients>") {
		t.Errorf("expected listing in output, got %q", out)
	}
}

func TestRun_InvalidChoiceReprintsMenu(t *testing.T) {
	out := runMenu(t, &fakeStore{}, "9\n3\n")

	if !strings.Contains(out, "Invalid choice. Please try again.") {
		t.Errorf("expected invalid choice message, got %q", out)
	}
	if n := strings.Count(out, "Medical History Management"); n != 2 {
		t.Errorf("expected menu printed twice, got %d", n)
	}
}

func TestRun_AddPatientWithDiagnoses(t *testing.T) {
	store := &fakeStore{}
	input := "2\nP001\nJohn Doe\n1990-01-01\nMale\ny\nFlu\nY\nCough\nn\n3\n"
	out := runMenu(t, store, input)

	if len(store.added) != 1 {
		t.Fatalf("expected 1 patient, got %d", len(store.added))
	}
	e := store.added[0]
	if e.PatientID != "P001" || e.Name != "John Doe" || e.DOB != "1990-01-01" || e.Gender != "Male" {
		t.Errorf("unexpected patient: %+v", e.Patient)
	}
	if len(e.Records) != 2 || e.Records[0]["diagnosis"] != "Flu" || e.Records[1]["diagnosis"] != "Cough" {
		t.Errorf("unexpected records: %v", e.Records)
	}
	if !strings.Contains(out, "Patient added successfully!") {
		t.Errorf("expected success message, got %q", out)
	}
}

func TestRun_AddPatientEmptyFieldsAccepted(t *testing.T) {
	store := &fakeStore{}
	runMenu(t, store, "2\n\n\n\n\nn\n3\n")

	if len(store.added) != 1 {
		t.Fatalf("expected 1 patient, got %d", len(store.added))
	}
	if store.added[0].PatientID != "" || len(store.added[0].Records) != 0 {
		t.Errorf("unexpected entry: %+v", store.added[0])
	}
}

func TestRun_AnyNonYesEndsDiagnosisLoop(t *testing.T) {
	store := &fakeStore{}
	runMenu(t, store, "2\nP1\nA\nB\nC\nyes\n3\n")

	if len(store.added) != 1 || len(store.added[0].Records) != 0 {
		t.Errorf("expected no records, got %+v", store.added)
	}
}

func TestRun_EOFExits(t *testing.T) {
	out := runMenu(t, &fakeStore{}, "")
	if !strings.Contains(out, "Exiting...") {
		t.Errorf("expected exit on EOF, got %q", out)
	}
}

func TestRun_EOFDuringAddSavesNothing(t *testing.T) {
	store := &fakeStore{}
	runMenu(t, store, "2\nP001\nJohn")

	if len(store.added) != 0 {
		t.Errorf("expected nothing saved, got %d", len(store.added))
	}
}

func TestRun_LastLineWithoutNewline(t *testing.T) {
	out := runMenu(t, &fakeStore{}, "3")
	if !strings.HasSuffix(out, "Exiting...\n") {
		t.Errorf("expected exit, got %q", out)
	}
}

func TestRun_CRLFInput(t *testing.T) {
	store := &fakeStore{}
	runMenu(t, store, "2\r\nP001\r\nJohn\r\nDOB\r\nMale\r\ny\r\nFlu\r\nn\r\n3\r\n")

	if len(store.added) != 1 || store.added[0].PatientID != "P001" {
		t.Fatalf("unexpected entries: %+v", store.added)
	}
	if store.added[0].Records[0]["diagnosis"] != "Flu" {
		t.Errorf("unexpected diagnosis: %v", store.added[0].Records[0])
	}
}

func TestRun_StoreErrorReturned(t *testing.T) {
	store := &fakeStore{displayErr: errors.New("parse failed")}
	m := New(store, strings.NewReader("1\n3\n"), io.Discard, zerolog.Nop())

	if err := m.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_FileBackedAddThenView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	svc := history.NewService(history.NewFileRepository(path, zerolog.Nop()), zerolog.Nop())

	out := runMenu(t, svc, "2\nP002\nJane Doe\n1985-05-15\nFemale\ny\nCold\nn\n1\n3\n")

	if !strings.Contains(out, "Patient ID: P002") {
		t.Errorf("expected patient in listing, got %q", out)
	}
	if !strings.Contains(out, "Diagnosis: Cold") {
		t.Errorf("expected diagnosis in listing, got %q", out)
	}
}
