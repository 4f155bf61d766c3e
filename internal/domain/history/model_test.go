package history

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestPatient_Display(t *testing.T) {
	var buf bytes.Buffer
	NewPatient("P002", "Jane Doe", "1985-05-15", "Female").Display(&buf)

	want := "\nPatient ID: P002\nName: Jane Doe\nDate of Birth: 1985-05-15\nGender: Female\n"
	if buf.String() != want {
		t.Errorf("Display() = %q, want %q", buf.String(), want)
	}
}

func TestPatient_Display_EmptyFieldsAccepted(t *testing.T) {
	var buf bytes.Buffer
	NewPatient("", "", "", "").Display(&buf)

	if !strings.Contains(buf.String(), "Patient ID: \n") {
		t.Errorf("expected empty patient id line, got %q", buf.String())
	}
}

func TestPatient_ToEntry(t *testing.T) {
	p := NewPatient("P001", "John Doe", "1990-01-01", "Male")
	e := p.ToEntry([]Record{NewDiagnosisRecord("Flu"), NewDiagnosisRecord("Cough")})

	if e.PatientID != "P001" {
		t.Errorf("PatientID = %q, want P001", e.PatientID)
	}
	if len(e.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(e.Records))
	}
	if e.Records[0]["diagnosis"] != "Flu" || e.Records[1]["diagnosis"] != "Cough" {
		t.Errorf("records out of order: %v", e.Records)
	}
}

func TestPatient_ToEntry_NoRecords(t *testing.T) {
	e := NewPatient("P001", "John Doe", "1990-01-01", "Male").ToEntry(nil)
	if e.Records == nil {
		t.Fatal("expected non-nil records slice")
	}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"records":[]`) {
		t.Errorf("expected empty records array, got %s", data)
	}
}

func TestEntry_JSONShape(t *testing.T) {
	e := NewPatient("P001", "John Doe", "1990-01-01", "Male").ToEntry([]Record{NewDiagnosisRecord("Flu")})

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"patient_id", "name", "dob", "gender", "records"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if len(raw) != 5 {
		t.Errorf("expected 5 keys, got %d: %s", len(raw), data)
	}
}

func TestEntry_DecodedRecords_SkipsUnknown(t *testing.T) {
	e := Entry{
		Patient: NewPatient("P001", "John Doe", "1990-01-01", "Male"),
		Records: []RecordData{
			{"type": "diagnosis", "diagnosis": "Flu"},
			{"type": "imaging", "modality": "MR"},
			{"type": "diagnosis", "diagnosis": "Cold"},
		},
	}

	got := e.DecodedRecords()
	if len(got) != 2 {
		t.Fatalf("expected 2 decoded records, got %d", len(got))
	}
	if got[1].(*DiagnosisRecord).Diagnosis != "Cold" {
		t.Errorf("second record = %v, want Cold", got[1])
	}
}

func TestEntry_MarshalKeyOrder(t *testing.T) {
	e := NewPatient("P001", "John Doe", "1990-01-01", "Male").ToEntry(nil)
	e.Extra = map[string]interface{}{"zeta": 1, "alpha": "a"}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"patient_id":"P001","name":"John Doe","dob":"1990-01-01","gender":"Male","records":[],"alpha":"a","zeta":1}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestEntry_UnmarshalRejectsNonObject(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`"P001"`), &e); err == nil {
		t.Fatal("expected error for a non-object patient")
	}
}
