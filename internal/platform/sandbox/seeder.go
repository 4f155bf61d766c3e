// Package sandbox produces synthetic patients and diagnoses for demo and
// developer environments. Output is reproducible for a given seed.
package sandbox

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ehr/medhistory/internal/domain/history"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// SeedConfig controls the volume and shape of generated synthetic data.
type SeedConfig struct {
	PatientCount           int   `json:"patientCount"`
	MaxDiagnosesPerPatient int   `json:"maxDiagnosesPerPatient"`
	Seed                   int64 `json:"seed"`
}

// DefaultSeedConfig returns a SeedConfig with sensible demo defaults.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		PatientCount:           10,
		MaxDiagnosesPerPatient: 3,
	}
}

// SeedResult summarises a generation run.
type SeedResult struct {
	Patients  int           `json:"patients"`
	Diagnoses int           `json:"diagnoses"`
	Duration  time.Duration `json:"duration"`
}

// ---------------------------------------------------------------------------
// Vocabulary
// ---------------------------------------------------------------------------

var (
	firstNamesMale = []string{
		"James", "Robert", "John", "Michael", "David", "William", "Richard",
		"Joseph", "Thomas", "Christopher", "Charles", "Daniel", "Matthew",
		"Anthony", "Mark", "Donald", "Steven", "Paul", "Andrew", "Joshua",
		"Kenneth", "Kevin", "Brian", "George", "Timothy", "Ronald", "Edward",
		"Jason", "Jeffrey", "Ryan", "Jacob", "Gary", "Nicholas", "Eric",
		"Jonathan", "Stephen", "Larry", "Justin", "Scott", "Brandon",
		"Benjamin", "Samuel", "Raymond", "Gregory", "Frank", "Alexander",
		"Patrick", "Jack", "Dennis", "Jerry", "Tyler",
	}
	firstNamesFemale = []string{
		"Mary", "Patricia", "Jennifer", "Linda", "Barbara", "Elizabeth",
		"Susan", "Jessica", "Sarah", "Karen", "Lisa", "Nancy", "Betty",
		"Margaret", "Sandra", "Ashley", "Dorothy", "Kimberly", "Emily",
		"Donna", "Michelle", "Carol", "Amanda", "Melissa", "Deborah",
		"Stephanie", "Rebecca", "Sharon", "Laura", "Cynthia", "Kathleen",
		"Amy", "Angela", "Shirley", "Anna", "Brenda", "Pamela", "Emma",
		"Nicole", "Helen", "Samantha", "Katherine", "Christine", "Debra",
		"Rachel", "Carolyn", "Janet", "Catherine", "Maria", "Heather",
		"Diane",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia",
		"Miller", "Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez",
		"Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore",
		"Jackson", "Martin", "Lee", "Perez", "Thompson", "White", "Harris",
		"Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker",
		"Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen",
		"Hill", "Flores", "Green", "Adams", "Nelson", "Baker", "Hall",
		"Rivera", "Campbell", "Mitchell", "Carter", "Roberts", "Gomez",
	}

	diagnoses = []string{
		"Type 2 diabetes mellitus without complications",
		"Essential (primary) hypertension",
		"Unspecified asthma, uncomplicated",
		"Hyperlipidemia, unspecified",
		"Acute upper respiratory infection, unspecified",
		"Low back pain",
		"Major depressive disorder, single episode, unspecified",
		"Gastro-esophageal reflux disease with esophagitis",
		"Urinary tract infection, site not specified",
		"Acute bronchitis, unspecified",
		"Hypothyroidism, unspecified",
		"Migraine, unspecified, not intractable",
		"Cough, unspecified",
		"Dermatitis, unspecified",
		"Irritable bowel syndrome without diarrhea",
		"Insomnia, unspecified",
		"Allergic rhinitis, unspecified",
		"Vitamin D deficiency, unspecified",
		"Influenza",
		"Common cold",
	}
)

// ---------------------------------------------------------------------------
// DataGenerator
// ---------------------------------------------------------------------------

// DataGenerator produces deterministic synthetic patients.
type DataGenerator struct {
	rng     *rand.Rand
	counter uint64
}

// NewDataGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (g *DataGenerator) nextID(prefix string) string {
	g.counter++
	return fmt.Sprintf("%s-%08x-%04x", prefix, g.rng.Uint32(), g.counter)
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *DataGenerator) randomDate(minYear, maxYear int) string {
	y := minYear + g.rng.Intn(maxYear-minYear+1)
	m := 1 + g.rng.Intn(12)
	d := 1 + g.rng.Intn(28) // safe for all months
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// GeneratePatient produces a patient with demographic fields filled in.
func (g *DataGenerator) GeneratePatient() history.Patient {
	isMale := g.rng.Intn(2) == 0
	var firstName string
	var gender string
	if isMale {
		firstName = g.pick(firstNamesMale)
		gender = "Male"
	} else {
		firstName = g.pick(firstNamesFemale)
		gender = "Female"
	}
	lastName := g.pick(lastNames)

	return history.NewPatient(
		g.nextID("P"),
		firstName+" "+lastName,
		g.randomDate(1940, 2010),
		gender,
	)
}

// GenerateDiagnoses returns between 0 and limit distinct diagnosis records.
func (g *DataGenerator) GenerateDiagnoses(limit int) []history.Record {
	if limit <= 0 {
		return nil
	}
	n := g.rng.Intn(limit + 1)
	if n > len(diagnoses) {
		n = len(diagnoses)
	}
	records := make([]history.Record, 0, n)
	for _, i := range g.rng.Perm(len(diagnoses))[:n] {
		records = append(records, history.NewDiagnosisRecord(diagnoses[i]))
	}
	return records
}

// ---------------------------------------------------------------------------
// Seeder
// ---------------------------------------------------------------------------

// Seeder orchestrates generation of a set of synthetic patients.
type Seeder struct {
	generator *DataGenerator
	config    SeedConfig
}

// NewSeeder creates a new Seeder with the given config.
func NewSeeder(config SeedConfig) *Seeder {
	return &Seeder{
		generator: NewDataGenerator(config.Seed),
		config:    config,
	}
}

// Generate creates the configured number of patients, serialized and ready
// to append to the document.
func (s *Seeder) Generate() ([]history.Entry, *SeedResult, error) {
	if s.config.PatientCount < 0 {
		return nil, nil, fmt.Errorf("patient count must not be negative, got %d", s.config.PatientCount)
	}

	start := time.Now()
	result := &SeedResult{}
	entries := make([]history.Entry, 0, s.config.PatientCount)

	for i := 0; i < s.config.PatientCount; i++ {
		patient := s.generator.GeneratePatient()
		records := s.generator.GenerateDiagnoses(s.config.MaxDiagnosesPerPatient)
		entries = append(entries, patient.ToEntry(records))
		result.Diagnoses += len(records)
	}

	result.Patients = len(entries)
	result.Duration = time.Since(start)
	return entries, result, nil
}
