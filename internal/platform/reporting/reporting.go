package reporting

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ehr/medhistory/internal/domain/history"
)

// MeasureDefinition defines a reporting measure evaluated over the stored
// patients.
type MeasureDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`

	evaluate func(patients []history.Entry) []map[string]interface{}
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measure_id"`
	MeasureName string                   `json:"measure_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Columns     []string                 `json:"columns"`
	Results     []map[string]interface{} `json:"results"`
}

// PredefinedMeasures is the list of available reporting measures.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "patient-count",
		Name:        "Patient Count",
		Description: "Total number of stored patients and how many have no records",
		Columns:     []string{"total", "without_records"},
		evaluate:    patientCount,
	},
	{
		ID:          "record-types",
		Name:        "Records by Type",
		Description: "Number of stored records grouped by type tag, including unknown tags",
		Columns:     []string{"type", "total"},
		evaluate:    recordTypes,
	},
	{
		ID:          "top-diagnoses",
		Name:        "Top Diagnoses",
		Description: "Diagnosis text grouped and ordered by frequency",
		Columns:     []string{"diagnosis", "total"},
		evaluate:    topDiagnoses,
	},
}

// FindMeasure looks up a measure by ID.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}

// Evaluate runs a measure over the given patients.
func Evaluate(m *MeasureDefinition, patients []history.Entry) MeasureReport {
	results := m.evaluate(patients)
	if results == nil {
		results = []map[string]interface{}{}
	}
	return MeasureReport{
		MeasureID:   m.ID,
		MeasureName: m.Name,
		GeneratedAt: time.Now(),
		Columns:     m.Columns,
		Results:     results,
	}
}

// EvaluateAll runs every predefined measure.
func EvaluateAll(patients []history.Entry) []MeasureReport {
	reports := make([]MeasureReport, 0, len(PredefinedMeasures))
	for i := range PredefinedMeasures {
		reports = append(reports, Evaluate(&PredefinedMeasures[i], patients))
	}
	return reports
}

// WriteText renders reports as bordered tables.
func WriteText(w io.Writer, reports []MeasureReport) error {
	for _, r := range reports {
		rows := make([][]string, 0, len(r.Results))
		for _, res := range r.Results {
			row := make([]string, len(r.Columns))
			for i, col := range r.Columns {
				row[i] = fmt.Sprint(res[col])
			}
			rows = append(rows, row)
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(r.Columns...).
			Rows(rows...)

		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", r.MeasureName, t.String()); err != nil {
			return err
		}
	}
	return nil
}

func patientCount(patients []history.Entry) []map[string]interface{} {
	without := 0
	for _, p := range patients {
		if len(p.Records) == 0 {
			without++
		}
	}
	return []map[string]interface{}{
		{"total": len(patients), "without_records": without},
	}
}

func recordTypes(patients []history.Entry) []map[string]interface{} {
	counts := map[string]int{}
	for _, p := range patients {
		for _, r := range p.Records {
			t := string(r.Type())
			if t == "" {
				t = "(missing)"
			}
			counts[t]++
		}
	}
	return sortedCounts(counts, "type")
}

func topDiagnoses(patients []history.Entry) []map[string]interface{} {
	counts := map[string]int{}
	for _, p := range patients {
		for _, r := range p.DecodedRecords() {
			if d, ok := r.(*history.DiagnosisRecord); ok {
				counts[d.Diagnosis]++
			}
		}
	}
	return sortedCounts(counts, "diagnosis")
}

// sortedCounts orders by total descending, then key ascending.
func sortedCounts(counts map[string]int, keyColumn string) []map[string]interface{} {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	results := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		results = append(results, map[string]interface{}{keyColumn: k, "total": counts[k]})
	}
	return results
}
