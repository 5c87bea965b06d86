package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/ocptv"
	"github.com/roach88/ocptv/internal/harness"
	"github.com/roach88/ocptv/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Output    string
	OutputDir string
	Validate  bool
	Archive   string

	// Clock allows overriding the timestamp source (for testing).
	// If nil, defaults to time.Now.
	Clock func() time.Time
}

// RunSummary is reported after a scenario has been emitted.
type RunSummary struct {
	Scenario string   `json:"scenario"`
	Output   string   `json:"output"`
	StreamID string   `json:"stream_id,omitempty"`
	Lines    int      `json:"lines"`
	Pass     bool     `json:"pass"`
	Errors   []string `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Emit the output stream of a scenario",
		Long: `Execute a YAML scenario through the ocptv API and write the resulting
JSON-lines stream.

Without --output or --output-dir the stream goes to standard output and the
summary is logged to standard error. --output-dir names the file with a
time-sortable UUIDv7. --archive also stores the stream in a SQLite database
under a UUIDv7 stream id; read it back with "ocptv replay".

Example:
  ocptv run ./scenarios/memory.yaml
  ocptv run ./scenarios/memory.yaml --output-dir ./results --validate
  ocptv run ./scenarios/memory.yaml --archive ./streams.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the stream to this file")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "write the stream to <uuid>.jsonl in this directory")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "check every line against the output schema while emitting")
	cmd.Flags().StringVar(&opts.Archive, "archive", "", "also store the stream in this SQLite database")
	cmd.MarkFlagsMutuallyExclusive("output", "output-dir")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	logger := opts.Logger(cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading scenario", err)
	}

	target, err := outputPath(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "choosing output file", err)
	}

	var w ocptv.Writer
	if target == "" {
		w = ocptv.NewStreamWriter(cmd.OutOrStdout())
	} else {
		fw, err := ocptv.NewFileWriter(target)
		if err != nil {
			return WrapExitError(ExitCommandError, "creating output file", err)
		}
		defer func() {
			if closeErr := fw.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Str("path", target).Msg("closing output file")
			}
		}()
		w = fw
	}

	var streamID string
	if opts.Archive != "" {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		st, id, err := openArchive(ctx, opts.Archive, scenario.Name)
		if err != nil {
			return WrapExitError(ExitCommandError, "opening archive", err)
		}
		defer st.Close()
		streamID = id
		w = ocptv.MultiWriter(w, st.Writer(ctx, id))
	}

	runOpts := []ocptv.RunOption{ocptv.WithLogger(logger)}
	if opts.Clock != nil {
		runOpts = append(runOpts, ocptv.WithClock(opts.Clock))
	}
	if opts.Validate {
		runOpts = append(runOpts, ocptv.WithSchemaValidation())
	}

	logger.Debug().Str("scenario", scenario.Name).Str("output", displayTarget(target)).Msg("running scenario")
	result, err := harness.Execute(scenario, w, runOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "scenario run failed", err)
	}

	summary := RunSummary{
		Scenario: scenario.Name,
		Output:   displayTarget(target),
		StreamID: streamID,
		Lines:    len(result.Lines),
		Pass:     result.Pass,
		Errors:   result.Errors,
	}
	logger.Info().
		Str("scenario", summary.Scenario).
		Str("output", summary.Output).
		Int("lines", summary.Lines).
		Bool("pass", summary.Pass).
		Str("stream_id", streamID).
		Msg("scenario emitted")

	// The stream owns stdout; only report there when it went to a file.
	if target != "" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		if opts.Format == "json" {
			if err := formatter.Success(summary); err != nil {
				return err
			}
		} else if err := formatter.Success(fmt.Sprintf("wrote %d line(s) to %s", summary.Lines, target)); err != nil {
			return err
		}
	}

	if !result.Pass {
		for _, e := range result.Errors {
			logger.Error().Msg(e)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(result.Errors)))
	}
	return nil
}

// outputPath resolves --output and --output-dir. "" means standard output.
func outputPath(opts *RunOptions) (string, error) {
	if opts.Output != "" {
		return opts.Output, nil
	}
	if opts.OutputDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating file name: %w", err)
	}
	return filepath.Join(opts.OutputDir, id.String()+".jsonl"), nil
}

func displayTarget(target string) string {
	if target == "" {
		return "stdout"
	}
	return target
}

// openArchive opens the store at path and registers a new stream for label.
func openArchive(ctx context.Context, path, label string) (*store.Store, string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, "", fmt.Errorf("generating stream id: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, "", err
	}
	if err := st.CreateStream(ctx, id.String(), label, time.Now()); err != nil {
		st.Close()
		return nil, "", err
	}
	return st, id.String(), nil
}
