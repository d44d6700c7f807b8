package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/mem/snapshot"
	"github.com/joshuapare/poolkit/pkg/report"
)

func init() {
	cmd := newInspectCmd()
	cmd.Flags().Int("map-width", report.DefaultMapWidth, "blocks per block-map row (0 hides the map)")
	rootCmd.AddCommand(cmd)
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Show the accounting of a saved pool snapshot",
		Long: `The inspect command loads a pool snapshot and prints its block size,
occupancy, free list order and block map.

Example:
  poolctl inspect pool.pksn
  poolctl inspect pool.pksn --yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, path string) error {
	h, err := snapshot.Stat(path)
	if err != nil {
		return err
	}
	opts, err := poolOptions()
	if err != nil {
		return err
	}
	p, err := snapshot.Load(path, opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	r := report.FromPool(filepath.Base(path), p, cfg.GetInt("map-width"))
	// the restored pool always owns its memory; report the saved flag
	r.Owned = h.Owned()
	w := cmd.OutOrStdout()
	if err := writeReport(w, r); err != nil {
		return err
	}
	if !cfg.GetBool("json") && !cfg.GetBool("yaml") {
		fmt.Fprintf(w, "\nSnapshot: version %d, %d bytes\n", h.Version, h.Size())
	}
	return nil
}
