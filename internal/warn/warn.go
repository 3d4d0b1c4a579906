// Package warn provides a deduplicated warning collector.
// Soft validation issues are collected as values and surfaced once at the
// end of a run instead of being written to process-wide state, so parallel
// model generation cannot interleave or duplicate messages.
package warn

import (
	"fmt"
	"sort"
)

// Collector accumulates warning messages, dropping exact duplicates.
// The zero value is ready to use. A Collector is not safe for concurrent
// use; merge per-worker collectors instead.
type Collector struct {
	seen     map[string]struct{}
	messages []string
}

// Addf records a formatted warning message. Duplicate messages are ignored.
func (c *Collector) Addf(format string, args ...any) {
	c.add(fmt.Sprintf(format, args...))
}

// Add records a warning message. Duplicate messages are ignored.
func (c *Collector) Add(msg string) {
	c.add(msg)
}

func (c *Collector) add(msg string) {
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, ok := c.seen[msg]; ok {
		return
	}
	c.seen[msg] = struct{}{}
	c.messages = append(c.messages, msg)
}

// Merge absorbs all messages from other, preserving deduplication.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	for _, msg := range other.messages {
		c.add(msg)
	}
}

// Messages returns the collected warnings in insertion order.
func (c *Collector) Messages() []string {
	return c.messages
}

// Sorted returns the collected warnings sorted lexically.
// Used for stable end-of-run summaries.
func (c *Collector) Sorted() []string {
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	sort.Strings(out)
	return out
}

// Len reports the number of distinct warnings collected.
func (c *Collector) Len() int {
	return len(c.messages)
}
