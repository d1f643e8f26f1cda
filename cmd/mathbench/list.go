package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/mathbench/internal/dataset"
)

func newListCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured models and available datasets",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfigInto(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, st)
		},
	}
	return cmd
}

func runList(cmd *cobra.Command, st *cliState) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("list: missing config (internal error)")
	}

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "models:")
	ids := make([]string, 0, len(st.cfg.Models))
	for id := range st.cfg.Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		mc := st.cfg.Models[id]
		fmt.Fprintf(out, "  %s (%s)\n", id, mc.Provider)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "  (none)")
	}

	names, err := dataset.List(st.cfg.Datasets.Dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "datasets:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", name)
	}
	if len(names) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	return nil
}
