package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetchstore_sdk"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/store"
)

func newProbeCmd() *cobra.Command {
	var config string
	var collection bool
	cmd := &cobra.Command{
		Use:   "probe <path>",
		Short: "Load a resource through the configured runtime and print the result",
		Long: `probe resolves the runtime from FETCHSTORE_* variables (or --config),
loads path as an entity or, with --collection, as a collection, and prints the
status, messages and payload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rt *fetchstore_sdk.Runtime
			var err error
			if config != "" {
				rt, err = fetchstore_sdk.NewFromConfig(config)
			} else {
				rt, err = fetchstore_sdk.NewFromEnv()
			}
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			var code status.Code
			var payload any
			var msgs fmt.Stringer
			req := rt.Request(args[0]).JSON()
			if collection {
				s := store.NewCollectionStore[json.RawMessage](rt.Client, store.WithContext(cmd.Context()))
				s.Load(req, func(c status.Code) { code = c })
				s.Wait()
				payload, msgs = s.Get(), s.Messages()
			} else {
				s := store.NewEntityStore[json.RawMessage](rt.Client, store.WithContext(cmd.Context()))
				s.Load(req, func(c status.Code) { code = c })
				s.Wait()
				payload, _ = s.Get()
				msgs = s.Messages()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode: %s\nstatus: %s\nmessages: %s\n", rt.Mode, code, msgs)
			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", data)
			if code.IsFailure() {
				return fmt.Errorf("probe %s: %s", args[0], code)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&config, "config", "", "config file for the runtime")
	cmd.Flags().BoolVar(&collection, "collection", false, "load path as a collection")
	return cmd
}
