package md2enex

import "runtime"

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps workers; conversion is CPU-bound and more workers
	// just thrash the scheduler.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for archive encoding and I/O.
	cpuDivisor = 2
)

// ConverterPool manages a set of Converter instances for parallel batch
// processing. Converters are created eagerly: they hold no external
// resources, and building them up front surfaces option errors before
// any work starts. All workers share one ResourceIndex so attachment
// dedup spans the whole run.
type ConverterPool struct {
	size  int
	sem   chan *Converter
	index *ResourceIndex
}

// NewConverterPool creates a pool of n converters sharing one resource
// index. n is clamped to at least one.
func NewConverterPool(n int, opts Options) (*ConverterPool, error) {
	if n < 1 {
		n = 1
	}

	p := &ConverterPool{
		size:  n,
		sem:   make(chan *Converter, n),
		index: NewResourceIndex(),
	}
	for i := 0; i < n; i++ {
		c, err := NewConverter(opts, WithResourceIndex(p.index))
		if err != nil {
			return nil, err
		}
		p.sem <- c
	}
	return p, nil
}

// Acquire takes a converter from the pool, blocking until one is free.
func (p *ConverterPool) Acquire() *Converter {
	return <-p.sem
}

// Release returns a converter to the pool.
func (p *ConverterPool) Release(c *Converter) {
	p.sem <- c
}

// Size returns the pool capacity.
func (p *ConverterPool) Size() int {
	return p.size
}

// Index returns the shared resource index.
func (p *ConverterPool) Index() *ResourceIndex {
	return p.index
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
