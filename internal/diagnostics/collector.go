package diagnostics

import (
	"cmp"
	"sync"

	"golang.org/x/exp/slices"
)

type spanKey struct {
	code       Code
	start, end int
}

// Collector accumulates diagnostics for one compilation unit. It is
// append-only: nothing is retracted once added. Mergeable classes are
// deduplicated by (code, span.Start, span.End); later duplicates only
// contribute their notes.
type Collector struct {
	mu    sync.Mutex
	file  string
	items []Diagnostic
	index map[spanKey]int
}

func NewCollector(file string) *Collector {
	return &Collector{file: file, index: make(map[spanKey]int)}
}

// Add appends d, merging it into an earlier diagnostic of the same
// mergeable class and span.
func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d.File == "" {
		d.File = c.file
	}
	if Mergeable(d.Code) {
		key := spanKey{d.Code, d.Span.Start, d.Span.End}
		if i, ok := c.index[key]; ok {
			for _, n := range d.Notes {
				if !slices.Contains(c.items[i].Notes, n) {
					c.items[i].Notes = append(c.items[i].Notes, n)
				}
			}
			return
		}
		c.index[key] = len(c.items)
	}
	c.items = append(c.items, d)
}

func (c *Collector) AddAll(ds []Diagnostic) {
	for _, d := range ds {
		c.Add(d)
	}
}

// Len returns the number of distinct diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Items returns a copy in insertion order.
func (c *Collector) Items() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.items...)
}

// Sorted returns a copy ordered by file, position, then code.
func (c *Collector) Sorted() []Diagnostic {
	out := c.Items()
	Sort(out)
	return out
}

func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by file, position, then code.
func Sort(ds []Diagnostic) {
	slices.SortStableFunc(ds, func(a, b Diagnostic) int {
		if r := cmp.Compare(a.File, b.File); r != 0 {
			return r
		}
		if r := cmp.Compare(a.Span.Start, b.Span.Start); r != 0 {
			return r
		}
		if r := cmp.Compare(a.Span.End, b.Span.End); r != 0 {
			return r
		}
		return cmp.Compare(a.Code, b.Code)
	})
}

// Policy adjusts emitted diagnostics: disabled codes are dropped and
// overridden codes get a new severity.
type Policy struct {
	Disabled  map[Code]bool
	Overrides map[Code]Severity
}

// Apply returns the sorted diagnostics filtered through p.
func (c *Collector) Apply(p Policy) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Sorted() {
		if p.Disabled[d.Code] {
			continue
		}
		if s, ok := p.Overrides[d.Code]; ok {
			d.Severity = s
		}
		out = append(out, d)
	}
	return out
}

// Count returns how many diagnostics have severity s.
func Count(ds []Diagnostic, s Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics carrying code.
func Filter(ds []Diagnostic, code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range ds {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
