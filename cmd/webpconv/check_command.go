package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"webpconv/internal/preflight"
)

var errChecksFailed = errors.New("one or more checks failed")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [directory]",
		Short: "Check the encoder and directory access",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var root string
			if len(args) == 1 {
				if root, err = resolveRoot(args[0]); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failed := false
			for _, result := range preflight.RunAll(cmd.Context(), cfg, root) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failed = true
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			if err := preflight.CheckEncoder(cfg.Encoder.Binary); err != nil {
				return err
			}
			if failed {
				return errChecksFailed
			}
			return nil
		},
	}
}
