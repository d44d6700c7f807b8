package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/mem/pool"
	"github.com/joshuapare/poolkit/mem/snapshot"
	"github.com/joshuapare/poolkit/pkg/report"
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().Int("size", 256, "pool size in bytes")
	cmd.Flags().Int("block-size", 16, "block size in bytes")
	cmd.Flags().Int("alignment", 8, "region alignment (power of two)")
	cmd.Flags().String("source", "heap", "memory source: heap or mmap")
	cmd.Flags().String("script", "a4,f1,a", "comma-separated steps")
	cmd.Flags().Int("map-width", report.DefaultMapWidth, "blocks per block-map row (0 hides the map)")
	cmd.Flags().String("out", "", "save a snapshot of the final pool to this path")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Run a step script against a new pool",
		Long: `The simulate command builds a pool, runs a step script against it and
prints the resulting accounting.

Steps:
  a, aN   allocate one or N blocks
  fI      free block I
  c       clear the pool
  gN      grow the pool to N bytes

Example:
  poolctl simulate --size 64 --block-size 8 --script "a8,f3,f5,a"
  poolctl simulate --script "a16,g512,a" --out pool.pksn --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd)
		},
	}
}

type stepKind byte

const (
	stepAlloc stepKind = 'a'
	stepFree  stepKind = 'f'
	stepClear stepKind = 'c'
	stepGrow  stepKind = 'g'
)

type step struct {
	kind stepKind
	n    int
}

// parseScript reads steps separated by commas or whitespace.
func parseScript(s string) ([]step, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
	steps := make([]step, 0, len(fields))
	for _, f := range fields {
		kind, arg := stepKind(f[0]), f[1:]
		st := step{kind: kind}
		switch kind {
		case stepAlloc:
			st.n = 1
			if arg != "" {
				n, err := strconv.Atoi(arg)
				if err != nil || n < 1 {
					return nil, fmt.Errorf("step %q: bad count", f)
				}
				st.n = n
			}
		case stepFree, stepGrow:
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("step %q: bad argument", f)
			}
			st.n = n
		case stepClear:
			if arg != "" {
				return nil, fmt.Errorf("step %q: clear takes no argument", f)
			}
		default:
			return nil, fmt.Errorf("step %q: unknown step", f)
		}
		steps = append(steps, st)
	}
	return steps, nil
}

type simResult struct {
	Allocations int
	Exhausted   int
	Frees       int
	Violations  []error
}

// runSteps applies steps to p. Contract violations are collected and the
// script continues; other errors stop it.
func runSteps(p *pool.Pool, steps []step) (simResult, error) {
	var res simResult
	for _, st := range steps {
		switch st.kind {
		case stepAlloc:
			for range st.n {
				if p.Allocate() == nil {
					res.Exhausted++
					continue
				}
				res.Allocations++
			}
		case stepFree:
			if err := p.DeallocateIndex(st.n); err != nil {
				res.Violations = append(res.Violations, err)
				continue
			}
			res.Frees++
		case stepClear:
			p.Clear()
		case stepGrow:
			if err := p.Reallocate(st.n); err != nil {
				return res, fmt.Errorf("grow to %d bytes: %w", st.n, err)
			}
		}
	}
	return res, nil
}

func runSimulate(cmd *cobra.Command) error {
	steps, err := parseScript(cfg.GetString("script"))
	if err != nil {
		return err
	}
	src, err := pool.ParseSource(cfg.GetString("source"))
	if err != nil {
		return err
	}
	opts, err := poolOptions()
	if err != nil {
		return err
	}

	p, err := pool.New(cfg.GetInt("size"), cfg.GetInt("block-size"), cfg.GetInt("alignment"), append(opts, pool.WithSource(src))...)
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := runSteps(p, steps)
	if err != nil {
		return err
	}

	if out := cfg.GetString("out"); out != "" {
		if err := snapshot.Save(out, p); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}

	w := cmd.OutOrStdout()
	if err := writeReport(w, report.FromPool("simulate", p, cfg.GetInt("map-width"))); err != nil {
		return err
	}
	if cfg.GetBool("json") || cfg.GetBool("yaml") {
		return nil
	}
	fmt.Fprintf(w, "\nSteps: %d allocations, %d exhausted, %d frees, %d violations\n",
		res.Allocations, res.Exhausted, res.Frees, len(res.Violations))
	for _, v := range res.Violations {
		fmt.Fprintf(w, "  %v\n", v)
	}
	if out := cfg.GetString("out"); out != "" {
		fmt.Fprintf(w, "Snapshot saved to %s\n", out)
	}
	return nil
}
