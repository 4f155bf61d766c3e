package reporting

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ehr/medhistory/internal/domain/history"
)

const (
	FormatXLSX = "xlsx"
	FormatYAML = "yaml"

	patientsSheet = "Patients"
	recordsSheet  = "Records"
)

type yamlDocument struct {
	Patients []yamlPatient `yaml:"patients"`
}

type yamlPatient struct {
	PatientID string               `yaml:"patient_id"`
	Name      string               `yaml:"name"`
	DOB       string               `yaml:"dob"`
	Gender    string               `yaml:"gender"`
	Records   []history.RecordData `yaml:"records"`
}

// ExportYAML writes the patients as a YAML document with the same shape as
// the JSON store.
func ExportYAML(w io.Writer, patients []history.Entry) error {
	doc := yamlDocument{Patients: make([]yamlPatient, 0, len(patients))}
	for _, p := range patients {
		records := p.Records
		if records == nil {
			records = []history.RecordData{}
		}
		doc.Patients = append(doc.Patients, yamlPatient{
			PatientID: p.PatientID,
			Name:      p.Name,
			DOB:       p.DOB,
			Gender:    p.Gender,
			Records:   records,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// ExportXLSX writes a workbook with one row per patient on the Patients
// sheet and one row per record on the Records sheet.
func ExportXLSX(path string, patients []history.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", patientsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(recordsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := setRow(f, patientsSheet, 1, []interface{}{"patient_id", "name", "dob", "gender", "records"}); err != nil {
		return err
	}
	if err := setRow(f, recordsSheet, 1, []interface{}{"patient_id", "seq", "type", "diagnosis"}); err != nil {
		return err
	}

	recordRow := 2
	for i, p := range patients {
		if err := setRow(f, patientsSheet, i+2, []interface{}{p.PatientID, p.Name, p.DOB, p.Gender, len(p.Records)}); err != nil {
			return err
		}
		for seq, r := range p.Records {
			diagnosis := ""
			if v, ok := r["diagnosis"]; ok && v != nil {
				diagnosis = fmt.Sprint(v)
			}
			if err := setRow(f, recordsSheet, recordRow, []interface{}{p.PatientID, seq + 1, string(r.Type()), diagnosis}); err != nil {
				return err
			}
			recordRow++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
