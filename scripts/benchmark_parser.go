package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Size        string
	Impl        string // "pool" or "heap"
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult compares the pool and heap runs of one operation and size.
type ComparisonResult struct {
	Operation  string
	Size       string
	PoolNs     float64
	HeapNs     float64
	Speedup    float64
	PoolMem    int64
	HeapMem    int64
	PoolAllocs int64
	HeapAllocs int64
	PoolOnly   bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Generated %d comparisons\n", len(comparisons))
	}

	report := generateMarkdownReport(comparisons, time.Now())

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

// BenchmarkAllocFree/pool/64-8    50000000    23.1 ns/op    0 B/op    0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	for scanner.Scan() {
		line := scanner.Text()

		// Output of go test -json wraps each line in an event
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		// Format: Benchmark<Operation>/<impl>/<size>-<procs>
		parts := strings.Split(matches[1], "/")
		if len(parts) < 2 {
			continue
		}

		r := BenchmarkResult{
			Name:      matches[1],
			Operation: strings.TrimPrefix(parts[0], "Benchmark"),
			Impl:      parts[1],
		}
		r.Iterations, _ = strconv.Atoi(matches[2])
		r.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}
		if len(parts) >= 3 {
			r.Size = trimProcs(parts[len(parts)-1])
		} else {
			r.Impl = trimProcs(r.Impl)
		}
		results = append(results, r)
	}

	return results
}

// trimProcs drops the -GOMAXPROCS suffix go test appends to the last name part.
func trimProcs(s string) string {
	if i := strings.LastIndex(s, "-"); i > 0 {
		return s[:i]
	}
	return s
}

func generateComparisons(results []BenchmarkResult) []ComparisonResult {
	type key struct {
		operation string
		size      string
	}

	grouped := make(map[key]map[string]BenchmarkResult)
	for _, result := range results {
		k := key{result.Operation, result.Size}
		if grouped[k] == nil {
			grouped[k] = make(map[string]BenchmarkResult)
		}
		grouped[k][result.Impl] = result
	}

	var comparisons []ComparisonResult
	for k, impls := range grouped {
		p, hasPool := impls["pool"]
		h, hasHeap := impls["heap"]
		if !hasPool {
			continue
		}
		c := ComparisonResult{
			Operation:  k.operation,
			Size:       k.size,
			PoolNs:     p.NsPerOp,
			PoolMem:    p.BytesPerOp,
			PoolAllocs: p.AllocsPerOp,
			PoolOnly:   !hasHeap,
		}
		if hasHeap {
			c.HeapNs = h.NsPerOp
			c.HeapMem = h.BytesPerOp
			c.HeapAllocs = h.AllocsPerOp
			if p.NsPerOp > 0 {
				c.Speedup = h.NsPerOp / p.NsPerOp
			}
		}
		comparisons = append(comparisons, c)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Operation != comparisons[j].Operation {
			return comparisons[i].Operation < comparisons[j].Operation
		}
		si, _ := strconv.Atoi(comparisons[i].Size)
		sj, _ := strconv.Atoi(comparisons[j].Size)
		return si < sj
	})

	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Pool Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	poolFaster, heapFaster, poolOnly := 0, 0, 0
	totalSpeedup := 0.0
	for _, c := range comparisons {
		switch {
		case c.PoolOnly:
			poolOnly++
			continue
		case c.Speedup > 1.0:
			poolFaster++
		case c.Speedup < 1.0:
			heapFaster++
		}
		totalSpeedup += c.Speedup
	}
	comparable := len(comparisons) - poolOnly
	avgSpeedup := 0.0
	if comparable > 0 {
		avgSpeedup = totalSpeedup / float64(comparable)
	}

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total benchmarks**: %d\n", len(comparisons))
	fmt.Fprintf(&sb, "- **Comparable** (pool and heap): %d\n", comparable)
	fmt.Fprintf(&sb, "  - pool faster: %d\n", poolFaster)
	fmt.Fprintf(&sb, "  - heap faster: %d\n", heapFaster)
	fmt.Fprintf(&sb, "  - Average speedup: **%.2fx**\n", avgSpeedup)
	fmt.Fprintf(&sb, "- **pool-only benchmarks**: %d\n\n", poolOnly)

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString("| Operation | Block | pool (ns/op) | heap (ns/op) | Speedup | Memory (B/op) | Allocs |\n")
	sb.WriteString("|-----------|-------|--------------|--------------|---------|---------------|--------|\n")
	for _, c := range comparisons {
		if c.PoolOnly {
			fmt.Fprintf(&sb, "| %s | %s | %s | *N/A* | *pool only* | %s | %d |\n",
				c.Operation, c.Size, formatNs(c.PoolNs), humanize.IBytes(uint64(c.PoolMem)), c.PoolAllocs)
			continue
		}
		indicator := "✓"
		if c.Speedup < 1.0 {
			indicator = "✗"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %.2fx %s | %s vs %s | %d vs %d |\n",
			c.Operation, c.Size,
			formatNs(c.PoolNs), formatNs(c.HeapNs),
			c.Speedup, indicator,
			humanize.IBytes(uint64(c.PoolMem)), humanize.IBytes(uint64(c.HeapMem)),
			c.PoolAllocs, c.HeapAllocs)
	}
	return sb.String()
}

func formatNs(ns float64) string {
	return humanize.CommafWithDigits(ns, 1)
}
