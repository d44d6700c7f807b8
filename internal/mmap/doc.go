// Package mmap provides memory mappings used as pool backing storage and for
// reading pool snapshots without copying them onto the heap.
package mmap
