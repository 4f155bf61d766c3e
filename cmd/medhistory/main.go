package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/medhistory/internal/config"
	"github.com/ehr/medhistory/internal/domain/history"
	"github.com/ehr/medhistory/internal/menu"
	"github.com/ehr/medhistory/internal/platform/middleware"
	"github.com/ehr/medhistory/internal/platform/reporting"
	"github.com/ehr/medhistory/internal/platform/sandbox"
	"github.com/ehr/medhistory/internal/platform/schema"
)

// app bundles what every subcommand needs once config is loaded.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	repo   *history.FileRepository
	svc    *history.Service
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "medhistory",
		Short:        "Single-user medical history keeper",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return menu.New(a.svc, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger).Run(cmd.Context())
		},
	}

	cmd.PersistentFlags().String("file", "", "Path to the patient data file (overrides DATA_FILE)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	cmd.AddCommand(listCmd())
	cmd.AddCommand(addCmd())
	cmd.AddCommand(seedCmd())
	cmd.AddCommand(reportCmd())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(checkCmd())
	return cmd
}

// newApp loads config and wires the store. Logs go to logOut, which is
// stdout unless stdout carries exported data.
func newApp(cmd *cobra.Command, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, logOut)
	logger.Debug().Str("data_file", cfg.DataFile).Msg("config loaded")

	repo := history.NewFileRepository(cfg.DataFile, logger)
	return &app{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		svc:    history.NewService(repo, logger),
	}, nil
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	logger, _ = middleware.WithRunID(logger.Level(cfg.Level()), "")
	return logger
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all patients and their records",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return a.svc.DisplayPatients(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a patient without the interactive menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			name, _ := cmd.Flags().GetString("name")
			dob, _ := cmd.Flags().GetString("dob")
			gender, _ := cmd.Flags().GetString("gender")
			diagnoses, _ := cmd.Flags().GetStringArray("diagnosis")

			a, err := newApp(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			records := make([]history.Record, 0, len(diagnoses))
			for _, d := range diagnoses {
				records = append(records, history.NewDiagnosisRecord(d))
			}
			if err := a.svc.AddPatient(cmd.Context(), history.NewPatient(id, name, dob, gender), records); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Patient added successfully!")
			return nil
		},
	}
	cmd.Flags().String("id", "", "Patient ID")
	cmd.Flags().String("name", "", "Patient name")
	cmd.Flags().String("dob", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().String("gender", "", "Gender")
	cmd.Flags().StringArray("diagnosis", nil, "Diagnosis record (repeatable)")
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Append synthetic patients for demos",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			seedCfg := sandbox.DefaultSeedConfig()
			seedCfg.PatientCount = a.cfg.SeedPatients
			if cmd.Flags().Changed("count") {
				seedCfg.PatientCount, _ = cmd.Flags().GetInt("count")
			}
			seedCfg.MaxDiagnosesPerPatient, _ = cmd.Flags().GetInt("max-diagnoses")
			seedCfg.Seed, _ = cmd.Flags().GetInt64("seed")

			entries, result, err := sandbox.NewSeeder(seedCfg).Generate()
			if err != nil {
				return err
			}
			if err := a.svc.AddEntries(cmd.Context(), entries); err != nil {
				return err
			}

			a.logger.Info().
				Int("patients", result.Patients).
				Int("diagnoses", result.Diagnoses).
				Dur("duration", result.Duration).
				Msg("seed complete")
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d patient(s) with %d diagnosis record(s).\n", result.Patients, result.Diagnoses)
			return nil
		},
	}
	cmd.Flags().Int("count", 0, "Number of patients to generate (default SEED_PATIENTS)")
	cmd.Flags().Int("max-diagnoses", 3, "Maximum diagnoses per patient")
	cmd.Flags().Int64("seed", 0, "Random seed for reproducible output (0 = time-based)")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print summary measures over the stored patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			measureID, _ := cmd.Flags().GetString("measure")

			a, err := newApp(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			patients, err := a.svc.ListPatients(cmd.Context())
			if err != nil {
				return err
			}

			var reports []reporting.MeasureReport
			if measureID == "" {
				reports = reporting.EvaluateAll(patients)
			} else {
				m := reporting.FindMeasure(measureID)
				if m == nil {
					return fmt.Errorf("unknown measure %q", measureID)
				}
				reports = []reporting.MeasureReport{reporting.Evaluate(m, patients)}
			}
			return reporting.WriteText(cmd.OutOrStdout(), reports)
		},
	}
	cmd.Flags().String("measure", "", "Only evaluate this measure (patient-count, record-types, top-diagnoses)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored patients to a spreadsheet or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")

			if format != reporting.FormatXLSX && format != reporting.FormatYAML {
				return fmt.Errorf("unsupported export format %q (use %s or %s)", format, reporting.FormatXLSX, reporting.FormatYAML)
			}
			if out == "-" && format == reporting.FormatXLSX {
				return fmt.Errorf("%s export cannot be written to stdout; pass a file path to --out", format)
			}

			logOut := cmd.OutOrStdout()
			if out == "-" {
				logOut = cmd.ErrOrStderr()
			}
			a, err := newApp(cmd, logOut)
			if err != nil {
				return err
			}
			patients, err := a.svc.ListPatients(cmd.Context())
			if err != nil {
				return err
			}

			if out == "" {
				out = filepath.Join(a.cfg.ExportDir, "patients."+format)
			}

			switch format {
			case reporting.FormatYAML:
				if out == "-" {
					return reporting.ExportYAML(cmd.OutOrStdout(), patients)
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				if err := reporting.ExportYAML(f, patients); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			default:
				if err := reporting.ExportXLSX(out, patients); err != nil {
					return err
				}
			}

			a.logger.Info().Str("format", format).Str("path", out).Int("patients", len(patients)).Msg("export complete")
			return nil
		},
	}
	cmd.Flags().String("format", reporting.FormatXLSX, "Export format: xlsx or yaml")
	cmd.Flags().String("out", "", "Output path (default EXPORT_DIR/patients.<format>, '-' for stdout with yaml)")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the data file against the document schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			path := a.repo.Path()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s does not exist yet; nothing to check.\n", path)
				return nil
			}

			v, err := schema.NewValidator()
			if err != nil {
				return err
			}
			issues, err := v.ValidateFile(path)
			if err != nil {
				return err
			}
			if len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", issue)
				}
				return fmt.Errorf("%s: %d schema violation(s)", path, len(issues))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid.\n", path)
			return nil
		},
	}
}
