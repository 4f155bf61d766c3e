package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Patient holds the demographic fields of a patient. Values are free text;
// DOB and Gender are not validated.
type Patient struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	DOB       string `json:"dob"`
	Gender    string `json:"gender"`
}

// NewPatient creates a patient. The ID is caller-supplied and uniqueness is
// not enforced.
func NewPatient(id, name, dob, gender string) Patient {
	return Patient{PatientID: id, Name: name, DOB: dob, Gender: gender}
}

// Display prints the patient's demographic details.
func (p Patient) Display(w io.Writer) {
	fmt.Fprintf(w, "\nPatient ID: %s\n", p.PatientID)
	fmt.Fprintf(w, "Name: %s\n", p.Name)
	fmt.Fprintf(w, "Date of Birth: %s\n", p.DOB)
	fmt.Fprintf(w, "Gender: %s\n", p.Gender)
}

// ToEntry serializes the patient together with its records.
func (p Patient) ToEntry(records []Record) Entry {
	data := make([]RecordData, 0, len(records))
	for _, r := range records {
		data = append(data, r.ToMap())
	}
	return Entry{Patient: p, Records: data}
}

// patientKeys are the stored keys backed by a Patient field, in write order.
var patientKeys = []string{"patient_id", "name", "dob", "gender"}

// Entry is one element of the stored document's patients array. Decoding is
// lenient: known fields of any JSON type are coerced to strings, and keys
// without a field are kept in Extra. Both survive a rewrite.
type Entry struct {
	Patient
	Records []RecordData           `json:"records"`
	Extra   map[string]interface{} `json:"-"`

	// coerced holds the stored value of each known field that was not a
	// string. It is written back as long as the field is unchanged.
	coerced map[string]interface{}
}

func (e *Entry) field(key string) *string {
	switch key {
	case "patient_id":
		return &e.PatientID
	case "name":
		return &e.Name
	case "dob":
		return &e.DOB
	case "gender":
		return &e.Gender
	}
	return nil
}

// UnmarshalJSON decodes one stored patient. Only a non-object patient or a
// records value that is not an array of objects is rejected.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("patient entry: %w", err)
	}

	*e = Entry{}
	for key, v := range raw {
		if f := e.field(key); f != nil {
			*f = coerceString(v)
			if _, ok := v.(string); !ok {
				if e.coerced == nil {
					e.coerced = map[string]interface{}{}
				}
				e.coerced[key] = v
			}
			continue
		}
		if key == "records" {
			records, err := decodeRecordList(v)
			if err != nil {
				return err
			}
			e.Records = records
			continue
		}
		if e.Extra == nil {
			e.Extra = map[string]interface{}{}
		}
		e.Extra[key] = v
	}
	return nil
}

// MarshalJSON writes the known fields, then records, then Extra keys in
// sorted order. A nil Records is written as [].
func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	write := func(key string, v interface{}) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(key); err != nil {
			return err
		}
		buf.WriteByte(':')
		return enc.Encode(v)
	}

	for _, key := range patientKeys {
		value := *e.field(key)
		var v interface{} = value
		if orig, ok := e.coerced[key]; ok && coerceString(orig) == value {
			v = orig
		}
		if err := write(key, v); err != nil {
			return nil, err
		}
	}

	records := e.Records
	if records == nil {
		records = []RecordData{}
	}
	if err := write("records", records); err != nil {
		return nil, err
	}

	extra := make([]string, 0, len(e.Extra))
	for key := range e.Extra {
		if key == "records" || e.field(key) != nil {
			continue
		}
		extra = append(extra, key)
	}
	sort.Strings(extra)
	for _, key := range extra {
		if err := write(key, e.Extra[key]); err != nil {
			return nil, fmt.Errorf("patient %s: key %q: %w", e.PatientID, key, err)
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeRecordList(v interface{}) ([]RecordData, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("records: expected an array, got %T", v)
	}
	records := make([]RecordData, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("records[%d]: expected an object, got %T", i, item)
		}
		records = append(records, RecordData(m))
	}
	return records, nil
}

// DecodedRecords returns the entry's records that have a known type, in
// stored order. Unknown kinds are skipped.
func (e Entry) DecodedRecords() []Record {
	var out []Record
	for _, d := range e.Records {
		if r, ok := DecodeRecord(d); ok {
			out = append(out, r)
		}
	}
	return out
}

// Document is the whole persisted file.
type Document struct {
	Patients []Entry `json:"patients"`
}
