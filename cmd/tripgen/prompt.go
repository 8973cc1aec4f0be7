package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripgen/internal/logging"
	"tripgen/internal/service"
)

func newPromptCmd() *cobra.Command {
	var req requestFlags
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the model prompt for a trip without calling the model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tripReq, err := req.request(cmd)
			if err != nil {
				return err
			}
			draft, err := service.NewTripPlanner(nil, logging.Discard()).Prepare(tripReq)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), draft.Prompt)
			return err
		},
	}
	req.register(cmd)
	return cmd
}
