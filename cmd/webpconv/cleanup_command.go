package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"webpconv/internal/cleanup"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var assumeYes bool
	var ignoreCase bool

	cmd := &cobra.Command{
		Use:   "cleanup <directory>",
		Short: "Delete all webp images from directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}
			root, err := resolveRoot(args[0])
			if err != nil {
				return err
			}

			paths, err := cleanup.Find(root, cfg.Encoder.OutputExtension, ignoreCase, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintln(out, "It's already clean")
				return nil
			}

			if !dryRun && !assumeYes {
				question := fmt.Sprintf("sure you want to delete %d %s images?", len(paths), cfg.Encoder.OutputExtension)
				ok, err := confirm(cmd.InOrStdin(), out, question)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Abort")
					return nil
				}
			}

			result := cleanup.Remove(cmd.Context(), paths, dryRun, logger)
			verb := "Deleted"
			if dryRun {
				verb = "Would delete"
			}
			if ctx.isVerbose() {
				for _, path := range result.Removed {
					fmt.Fprintf(out, "%s %s\n", verb, path)
				}
			}
			fmt.Fprintf(out, "%s %d of %d %s images\n", verb, len(result.Removed), len(paths), cfg.Encoder.OutputExtension)

			if len(result.Errors) > 0 {
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed to delete %s: %v\n", e.Path, e.Error)
				}
				return fmt.Errorf("%d files could not be deleted", len(result.Errors))
			}
			return cmd.Context().Err()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List files that would be deleted without deleting them")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&ignoreCase, "ignore-case", false, "Match the webp extension case-insensitively")
	return cmd
}

// confirm asks a yes/no question; anything but y or yes counts as no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	fmt.Fprintln(out)
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
