// Package menu implements the interactive text menu for viewing and adding
// patients.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ehr/medhistory/internal/domain/history"
)

const (
	ChoiceView = "1"
	ChoiceAdd  = "2"
	ChoiceExit = "3"
)

// Store is the subset of history.Service the menu drives.
type Store interface {
	AddPatient(ctx context.Context, p history.Patient, records []history.Record) error
	DisplayPatients(ctx context.Context, w io.Writer) error
}

// Menu reads choices from in and writes prompts and listings to out.
type Menu struct {
	store  Store
	in     *bufio.Reader
	out    io.Writer
	logger zerolog.Logger
}

// New creates a menu over the given store and streams.
func New(store Store, in io.Reader, out io.Writer, logger zerolog.Logger) *Menu {
	return &Menu{
		store:  store,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
	}
}

// Run loops until the user picks exit or input ends. Store errors end the
// loop and are returned.
func (m *Menu) Run(ctx context.Context) error {
	for {
		m.printMenu()

		choice, err := m.prompt("Enter your choice: ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out, "\nExiting...")
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(choice) {
		case ChoiceView:
			if err := m.store.DisplayPatients(ctx, m.out); err != nil {
				return err
			}
		case ChoiceAdd:
			err := m.addPatient(ctx)
			if errors.Is(err, io.EOF) {
				m.logger.Warn().Msg("input ended during add patient, nothing saved")
				fmt.Fprintln(m.out, "\nExiting...")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(m.out, "Patient added successfully!")
		case ChoiceExit:
			fmt.Fprintln(m.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please try again.")
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out, "\nMedical History Management")
	fmt.Fprintln(m.out, ChoiceView+". View Patients")
	fmt.Fprintln(m.out, ChoiceAdd+". Add Patient")
	fmt.Fprintln(m.out, ChoiceExit+". Exit")
}

// addPatient collects the demographic fields and zero or more diagnoses.
// Any field may be empty.
func (m *Menu) addPatient(ctx context.Context) error {
	fields := []string{
		"Enter patient ID: ",
		"Enter patient name: ",
		"Enter date of birth (YYYY-MM-DD): ",
		"Enter gender: ",
	}
	values := make([]string, len(fields))
	for i, label := range fields {
		v, err := m.prompt(label)
		if err != nil {
			return err
		}
		values[i] = v
	}
	patient := history.NewPatient(values[0], values[1], values[2], values[3])

	var records []history.Record
	for {
		answer, err := m.prompt("Add a diagnosis record? (y/n): ")
		if err != nil {
			return err
		}
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			break
		}
		diagnosis, err := m.prompt("Enter diagnosis: ")
		if err != nil {
			return err
		}
		records = append(records, history.NewDiagnosisRecord(diagnosis))
	}

	return m.store.AddPatient(ctx, patient, records)
}

// prompt writes label and reads one line without its terminator. A final
// line with no newline is returned normally; io.EOF only when nothing is left.
func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	line, err := m.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
