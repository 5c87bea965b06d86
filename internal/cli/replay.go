package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ocptv/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayResult describes one archived stream in JSON output.
type ReplayResult struct {
	Stream     store.Stream   `json:"stream"`
	Contiguous bool           `json:"contiguous"`
	Kinds      map[string]int `json:"kinds"`
	Lines      []string       `json:"lines"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [stream-id]",
		Short: "Read back streams archived with run --archive",
		Long: `Without a stream id, list the streams in the archive. With one, write
its lines to standard output in sequence order.

Exit codes:
  0 - Stream read back with sequence numbers 0..N-1
  1 - Stream has gaps in its sequence numbers
  2 - Command error (database or stream not found, etc.)

Examples:
  ocptv replay --db ./streams.db
  ocptv replay --db ./streams.db 0190b3c4-... | ocptv validate -`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runListStreams(opts, cmd)
			}
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runListStreams(opts *ReplayOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	streams, err := st.ListStreams(commandContext(cmd))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list streams", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(map[string]any{"streams": streams})
	}

	out := cmd.OutOrStdout()
	if len(streams) == 0 {
		fmt.Fprintln(out, "No streams found in database.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tLINES\tCREATED")
	for _, s := range streams {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.Label, s.Lines, s.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func runReplay(opts *ReplayOptions, id string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	stream, err := st.GetStream(ctx, id)
	if errors.Is(err, store.ErrStreamNotFound) {
		return WrapExitError(ExitCommandError, "unknown stream", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read stream", err)
	}
	arts, err := st.ReadStream(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read stream", err)
	}

	result := ReplayResult{
		Stream:     stream,
		Contiguous: store.Contiguous(arts),
		Lines:      make([]string, len(arts)),
	}
	for i, a := range arts {
		result.Lines[i] = a.Line
	}

	if opts.Format == "json" {
		result.Kinds, err = st.KindCounts(ctx, id)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to count artifacts", err)
		}
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, line := range result.Lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}

	if !result.Contiguous {
		return NewExitError(ExitFailure, fmt.Sprintf("stream %s has gaps in its sequence numbers", id))
	}
	return nil
}
