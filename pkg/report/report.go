// Package report renders pool accounting for people: a localized text
// summary with humanized byte sizes and a block occupancy map.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/poolkit/mem/pool"
)

// DefaultMapWidth is the number of blocks per block-map row.
const DefaultMapWidth = 64

// Report is a serializable view of one pool.
type Report struct {
	Name           string  `json:"name,omitempty" yaml:"name,omitempty"`
	BlockSize      int     `json:"block_size" yaml:"block_size"`
	Alignment      int     `json:"alignment" yaml:"alignment"`
	Blocks         int     `json:"blocks" yaml:"blocks"`
	FreeBlocks     int     `json:"free_blocks" yaml:"free_blocks"`
	Allocated      int     `json:"allocated_blocks" yaml:"allocated_blocks"`
	PoolSize       int     `json:"pool_size" yaml:"pool_size"`
	TotalSize      int     `json:"total_size" yaml:"total_size"`
	AllocatedBytes int     `json:"allocated_bytes" yaml:"allocated_bytes"`
	LostBytes      int     `json:"lost_bytes" yaml:"lost_bytes"`
	Utilization    float64 `json:"utilization" yaml:"utilization"`
	Owned          bool    `json:"owned" yaml:"owned"`
	Source         string  `json:"source" yaml:"source"`
	FreeOrder      []int   `json:"free_order" yaml:"free_order"`
	Map            string  `json:"map,omitempty" yaml:"map,omitempty"`
}

// FromPool builds a report from p's accounting and free list. The block map
// is included when mapWidth > 0.
func FromPool(name string, p *pool.Pool, mapWidth int) Report {
	st := p.Stats()
	r := Report{
		Name:           name,
		BlockSize:      st.BlockSize,
		Alignment:      st.Alignment,
		Blocks:         st.BlocksCount,
		FreeBlocks:     st.FreeBlocks,
		Allocated:      st.AllocatedBlocks,
		PoolSize:       st.PoolSize,
		TotalSize:      st.TotalSize,
		AllocatedBytes: st.AllocatedBytes,
		LostBytes:      st.LostBytes,
		Owned:          st.Owned,
		Source:         st.Source.String(),
		FreeOrder:      p.FreeOrder(),
	}
	if st.PoolSize > 0 {
		r.Utilization = float64(st.AllocatedBytes) / float64(st.PoolSize)
	}
	if mapWidth > 0 {
		r.Map = BlockMap(p, mapWidth)
	}
	return r
}

// BlockMap draws one character per block, '#' for allocated and '.' for
// free, width blocks per line.
func BlockMap(p *pool.Pool, width int) string {
	n := p.BlocksCount()
	if n == 0 || width <= 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(n + n/width)
	for i := range n {
		if i > 0 && i%width == 0 {
			sb.WriteByte('\n')
		}
		if p.IsAllocated(i) {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// WriteText renders r as an indented text summary. Counts use the digit
// grouping of tag; byte sizes are humanized in IEC units.
func (r Report) WriteText(w io.Writer, tag language.Tag) error {
	pr := message.NewPrinter(tag)
	var sb strings.Builder

	title := "Pool"
	if r.Name != "" {
		title = "Pool: " + r.Name
	}
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", len(title)) + "\n")

	sb.WriteString(pr.Sprintf("  Blocks:      %d x %d bytes (alignment %d)\n", r.Blocks, r.BlockSize, r.Alignment))
	sb.WriteString(pr.Sprintf("  Allocated:   %d blocks, %s\n", r.Allocated, bytesOf(r.AllocatedBytes)))
	sb.WriteString(pr.Sprintf("  Free:        %d blocks\n", r.FreeBlocks))
	sb.WriteString(pr.Sprintf("  Pool size:   %s (%d bytes)\n", bytesOf(r.PoolSize), r.PoolSize))
	sb.WriteString(pr.Sprintf("  Total size:  %s with free list\n", bytesOf(r.TotalSize)))
	if r.LostBytes > 0 {
		sb.WriteString(pr.Sprintf("  Lost:        %s to alignment and remainder\n", bytesOf(r.LostBytes)))
	}
	sb.WriteString(fmt.Sprintf("  Utilization: %.1f%%\n", r.Utilization*100))
	sb.WriteString(fmt.Sprintf("  Memory:      %s, owned=%t\n", r.Source, r.Owned))
	if len(r.FreeOrder) > 0 {
		sb.WriteString("  Next free:   " + headOf(r.FreeOrder, 8) + "\n")
	}
	if r.Map != "" {
		sb.WriteString("\nBlock map:\n")
		for line := range strings.SplitSeq(r.Map, "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func bytesOf(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// headOf formats the first n indices of order.
func headOf(order []int, n int) string {
	parts := make([]string, 0, min(n, len(order))+1)
	for _, i := range order[:min(n, len(order))] {
		parts = append(parts, fmt.Sprint(i))
	}
	if len(order) > n {
		parts = append(parts, fmt.Sprintf("... (%d more)", len(order)-n))
	}
	return strings.Join(parts, " ")
}
