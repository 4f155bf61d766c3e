package sandbox

import (
	"strings"
	"testing"

	"github.com/ehr/medhistory/internal/domain/history"
)

// ---------------------------------------------------------------------------
// DataGenerator
// ---------------------------------------------------------------------------

func TestDataGenerator_GeneratePatient(t *testing.T) {
	gen := NewDataGenerator(42)
	p := gen.GeneratePatient()

	if !strings.HasPrefix(p.PatientID, "P-") {
		t.Errorf("expected P- prefixed id, got %q", p.PatientID)
	}
	if strings.Count(p.Name, " ") != 1 {
		t.Errorf("expected given and family name, got %q", p.Name)
	}
	if len(p.DOB) != len("2000-01-01") {
		t.Errorf("expected YYYY-MM-DD dob, got %q", p.DOB)
	}
	if p.Gender != "Male" && p.Gender != "Female" {
		t.Errorf("unexpected gender %q", p.Gender)
	}
}

func TestDataGenerator_UniqueIDs(t *testing.T) {
	gen := NewDataGenerator(7)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := gen.GeneratePatient().PatientID
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestDataGenerator_Deterministic(t *testing.T) {
	a := NewDataGenerator(99).GeneratePatient()
	b := NewDataGenerator(99).GeneratePatient()
	if a != b {
		t.Errorf("expected identical patients for the same seed, got %+v and %+v", a, b)
	}
}

func TestDataGenerator_GenerateDiagnoses(t *testing.T) {
	gen := NewDataGenerator(1)
	for i := 0; i < 50; i++ {
		records := gen.GenerateDiagnoses(3)
		if len(records) > 3 {
			t.Fatalf("expected at most 3 records, got %d", len(records))
		}
		seen := map[string]bool{}
		for _, r := range records {
			if r.Type() != history.RecordTypeDiagnosis {
				t.Fatalf("unexpected record type %q", r.Type())
			}
			d := r.(*history.DiagnosisRecord).Diagnosis
			if seen[d] {
				t.Fatalf("duplicate diagnosis %q", d)
			}
			seen[d] = true
		}
	}
}

func TestDataGenerator_GenerateDiagnoses_ZeroLimit(t *testing.T) {
	if got := NewDataGenerator(1).GenerateDiagnoses(0); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

// ---------------------------------------------------------------------------
// Seeder
// ---------------------------------------------------------------------------

func TestSeeder_Generate(t *testing.T) {
	cfg := DefaultSeedConfig()
	cfg.PatientCount = 25
	cfg.Seed = 42

	entries, result, err := NewSeeder(cfg).Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 25 || result.Patients != 25 {
		t.Fatalf("expected 25 patients, got %d (result %d)", len(entries), result.Patients)
	}

	total := 0
	for _, e := range entries {
		if e.Records == nil {
			t.Fatal("expected non-nil records slice")
		}
		total += len(e.Records)
	}
	if total != result.Diagnoses {
		t.Errorf("result.Diagnoses = %d, counted %d", result.Diagnoses, total)
	}
}

func TestSeeder_Reproducible(t *testing.T) {
	cfg := SeedConfig{PatientCount: 5, MaxDiagnosesPerPatient: 2, Seed: 1234}
	a, _, _ := NewSeeder(cfg).Generate()
	b, _, _ := NewSeeder(cfg).Generate()

	for i := range a {
		if a[i].PatientID != b[i].PatientID || a[i].Name != b[i].Name {
			t.Fatalf("entry %d differs: %+v vs %+v", i, a[i].Patient, b[i].Patient)
		}
		if len(a[i].Records) != len(b[i].Records) {
			t.Fatalf("entry %d record count differs", i)
		}
	}
}

func TestSeeder_NegativeCount(t *testing.T) {
	if _, _, err := NewSeeder(SeedConfig{PatientCount: -1}).Generate(); err == nil {
		t.Fatal("expected error for negative patient count")
	}
}
