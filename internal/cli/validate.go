package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ocptv/internal/schema"
)

// ValidationResult holds the outcome of validating one stream.
type ValidationResult struct {
	Source string                    `json:"source"`
	Valid  bool                      `json:"valid"`
	Lines  int                       `json:"lines"`
	Errors []*schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check a JSON-lines stream against the output schema",
		Long: `Validate an OCP Test & Validation output stream.

Every line is checked against the schema. The stream must start with
schemaVersion at sequence number 0 and sequence numbers must increase by
exactly one. Use "-" to read standard input.

Exit codes:
  0 - Stream is valid
  1 - One or more violations
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, source string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	logger := opts.Logger(cmd.ErrOrStderr())

	var in io.Reader
	if source == "-" {
		in = cmd.InOrStdin()
	} else {
		f, err := os.Open(source)
		if err != nil {
			if os.IsNotExist(err) {
				_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("file not found: %s", source), nil)
				return WrapExitError(ExitCommandError, "file not found", err)
			}
			return WrapExitError(ExitCommandError, "opening stream", err)
		}
		defer f.Close()
		in = f
	}

	v, err := schema.Default()
	if err != nil {
		return WrapExitError(ExitCommandError, "loading output schema", err)
	}

	logger.Debug().Str("source", source).Msg("validating stream")
	report, err := v.ValidateStream(in)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading stream", err)
	}

	result := ValidationResult{
		Source: source,
		Valid:  report.OK(),
		Lines:  report.Lines,
		Errors: report.Errors,
	}
	logger.Debug().Int("lines", result.Lines).Int("violations", len(result.Errors)).Msg("validation finished")

	if result.Valid {
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		return formatter.Success(fmt.Sprintf("✓ %s: %d line(s) valid", source, result.Lines))
	}

	msg := fmt.Sprintf("%d violation(s) in %s", len(result.Errors), source)
	if opts.Format == "json" {
		if err := formatter.Error(ErrCodeStreamInvalid, msg, result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✗ %s\n", msg)
		for _, ve := range result.Errors {
			fmt.Fprintf(w, "  %s\n", ve.Error())
		}
	}
	return NewExitError(ExitFailure, msg)
}
