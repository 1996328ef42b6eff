package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Ratio1/fetchstore_sdk_go/internal/devseed"
)

func newCheckSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-seed <file>",
		Short: "Validate a seed document and summarize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := devseed.Load(args[0])
			if err != nil {
				return err
			}
			names := make([]string, 0, len(seed.Collections))
			for name := range seed.Collections {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintf(out, "collection /%s: %d items\n", name, len(seed.Collections[name]))
			}
			for _, r := range seed.Routes {
				fmt.Fprintf(out, "route %s %s -> %d\n", r.Method, r.Path, r.Status)
			}
			return nil
		},
	}
}
