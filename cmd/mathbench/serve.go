package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/mathbench/api"
	"github.com/stellarlinkco/mathbench/internal/leaderboard"
)

func newServeCmd(st *cliState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the leaderboard API",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfigInto(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, st, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func runServe(cmd *cobra.Command, st *cliState, addr string) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("serve: missing config (internal error)")
	}

	lb, err := leaderboard.NewStore(st.cfg.Storage.LeaderboardPath)
	if err != nil {
		return err
	}
	defer lb.Close()

	s, err := api.NewServer(lb)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", addr)
	return s.Run(addr)
}
