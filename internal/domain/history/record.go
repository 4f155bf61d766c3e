package history

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// RecordType is the tag stored in the "type" field of every record.
type RecordType string

const (
	RecordTypeDiagnosis RecordType = "diagnosis"
)

// RecordData is the stored form of a record. Records are kept as generic
// mappings so that kinds this build cannot decode survive a rewrite.
type RecordData map[string]interface{}

// Type returns the record tag, or "" when it is missing or not a string.
func (d RecordData) Type() RecordType {
	s, _ := d["type"].(string)
	return RecordType(s)
}

// Record is a medical record attached to a patient. New kinds are added by
// implementing Record and registering a decoder in recordDecoders.
type Record interface {
	Type() RecordType
	Display(w io.Writer)
	ToMap() RecordData
}

// DiagnosisRecord is a note describing a medical finding.
type DiagnosisRecord struct {
	Diagnosis string
}

// NewDiagnosisRecord creates a diagnosis record.
func NewDiagnosisRecord(diagnosis string) *DiagnosisRecord {
	return &DiagnosisRecord{Diagnosis: diagnosis}
}

func (r *DiagnosisRecord) Type() RecordType { return RecordTypeDiagnosis }

func (r *DiagnosisRecord) Display(w io.Writer) {
	fmt.Fprintf(w, "Diagnosis: %s\n", r.Diagnosis)
}

func (r *DiagnosisRecord) ToMap() RecordData {
	return RecordData{
		"type":      string(RecordTypeDiagnosis),
		"diagnosis": r.Diagnosis,
	}
}

var recordDecoders = map[RecordType]func(RecordData) Record{
	RecordTypeDiagnosis: func(d RecordData) Record {
		return NewDiagnosisRecord(stringField(d, "diagnosis"))
	},
}

// DecodeRecord rebuilds a Record from its stored form. The second return
// value is false when the type tag is unknown.
func DecodeRecord(d RecordData) (Record, bool) {
	decode, ok := recordDecoders[d.Type()]
	if !ok {
		return nil, false
	}
	return decode(d), true
}

// KnownRecordTypes lists the registered record tags in sorted order.
func KnownRecordTypes() []RecordType {
	types := make([]RecordType, 0, len(recordDecoders))
	for t := range recordDecoders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// stringField coerces a stored value to a string. Missing keys yield "".
func stringField(d RecordData, key string) string {
	return coerceString(d[key])
}

// coerceString renders a decoded JSON value as text. Scalars use their JSON
// spelling; objects and arrays are re-encoded compactly.
func coerceString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}
