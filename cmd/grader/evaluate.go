package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mrstrict/internal/archive"
	"mrstrict/internal/config"
	"mrstrict/internal/domain"
	"mrstrict/internal/extract"
	"mrstrict/internal/notifier"
	"mrstrict/internal/port"
	"mrstrict/internal/report"
	"mrstrict/internal/repository/memory"
	"mrstrict/internal/scoring"
	"mrstrict/internal/service"
)

type evaluateOptions struct {
	Reference string
	Dir       string
	Out       string
	XLSX      string
	Email     string
}

func newEvaluateCmd(cfg func() *config.Config) *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score every answer sheet in a folder against a reference",
		Long: `Score every PDF or text answer sheet in --dir against the --reference
document and print the marks table. ZIP files in the folder are expanded.

Examples:
  grader evaluate --reference key.pdf --dir ./answers
  grader evaluate --reference key.pdf --dir ./answers --out marks.csv --xlsx marks.xlsx
  grader evaluate --reference key.pdf --dir ./answers --email hod@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), cfg(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Reference, "reference", "", "Reference (answer key) document, .pdf or .txt")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Folder of candidate answer sheets")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the marks sheet as CSV to this path")
	cmd.Flags().StringVar(&opts.XLSX, "xlsx", "", "Write the marks sheet as XLSX to this path")
	cmd.Flags().StringVar(&opts.Email, "email", "", "Email the CSV marks sheet to this address")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func runEvaluate(ctx context.Context, cfg *config.Config, opts evaluateOptions, stdout io.Writer) error {
	maxFile := cfg.Evaluation.MaxFileBytes()

	refData, err := readLimited(opts.Reference, maxFile)
	if err != nil {
		return err
	}
	reference := domain.NewSourceDocument(filepath.Base(opts.Reference), refData)

	candidates, err := loadCandidates(opts.Dir, opts.Reference, cfg.Evaluation)
	if err != nil {
		return err
	}

	var mailer port.Notifier
	if opts.Email != "" {
		mailer, err = notifier.New(ctx, cfg.Email)
		if err != nil {
			return err
		}
	}

	svc := service.NewEvaluationService(memory.NewEvaluationRepo(), extract.NewDefaultRegistry(), nil, mailer, nil, service.EvaluationConfig{
		Concurrency:   cfg.Evaluation.Concurrency,
		MaxFileBytes:  maxFile,
		MaxCandidates: cfg.Evaluation.MaxCandidates,
	})

	eval, evalErr := svc.Evaluate(ctx, service.EvaluateInput{
		OwnerID:     uuid.New(),
		Reference:   reference,
		Candidates:  candidates,
		NotifyEmail: opts.Email,
	})
	if eval == nil {
		return evalErr
	}

	if err := printTable(stdout, eval); err != nil {
		return err
	}
	if len(eval.Results) > 0 {
		if err := writeReport(opts.Out, eval.Results, report.WriteCSV); err != nil {
			return err
		}
		if err := writeReport(opts.XLSX, eval.Results, report.WriteXLSX); err != nil {
			return err
		}
	}
	if evalErr == nil && eval.NotifiedTo != "" {
		fmt.Fprintf(stdout, "\nMarks sent to %s\n", eval.NotifiedTo)
	}
	return evalErr
}

// loadCandidates reads every supported document in dir, expanding ZIP files.
// The reference itself is excluded when it lives in the same folder.
func loadCandidates(dir, referencePath string, limits config.EvaluationConfig) ([]domain.SourceDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	refAbs, _ := filepath.Abs(referencePath)

	var docs []domain.SourceDocument
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if abs, _ := filepath.Abs(path); abs == refAbs {
			continue
		}

		if strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			data, err := readLimited(path, limits.MaxBundleBytes())
			if err != nil {
				return nil, err
			}
			if int64(len(data)) > limits.MaxBundleBytes() {
				return nil, fmt.Errorf("%s: %w", e.Name(), domain.ErrArchiveTooLarge)
			}
			bundle, err := archive.ReadZip(data, archive.Limits{
				MaxEntries:    limits.MaxArchiveEntries,
				MaxEntryBytes: limits.MaxFileBytes(),
			})
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Name(), err)
			}
			docs = append(docs, bundle...)
			continue
		}

		if _, ok := domain.FileTypeFromName(e.Name()); !ok {
			log.Debug().Str("file", e.Name()).Msg("skipping unsupported file")
			continue
		}
		data, err := readLimited(path, limits.MaxFileBytes())
		if err != nil {
			return nil, err
		}
		docs = append(docs, domain.NewSourceDocument(e.Name(), data))
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, domain.ErrNoCandidates)
	}
	return docs, nil
}

// readLimited reads at most limit+1 bytes so callers can detect oversize files.
func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	return io.ReadAll(r)
}

func printTable(w io.Writer, eval *domain.Evaluation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMARKS\tPERCENTAGE")
	for _, r := range eval.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.CandidateID, r.Grade, scoring.FormatPercent(r.ScorePercent))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(eval.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped %d file(s):\n", len(eval.Skipped))
		for _, s := range eval.Skipped {
			fmt.Fprintf(w, "  %s (%s): %s\n", s.CandidateID, s.Status, s.Reason)
		}
	}
	return nil
}

func writeReport(path string, results []domain.ComparisonResult, write func(io.Writer, []domain.ComparisonResult) error) (err error) {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := write(f, results); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("rows", len(results)).Msg("marks sheet written")
	return nil
}
