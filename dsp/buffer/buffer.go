// Package buffer provides a reusable float64 block buffer and pool for
// allocation-friendly offline processing. DSP entry points accept raw
// []float64 slices; Buffer is a convenience for callers that recycle
// block-sized scratch space.
package buffer

// Buffer wraps a float64 slice with reuse-friendly semantics.
type Buffer struct {
	samples []float64
}

// New returns a zero-filled Buffer of the given length.
func New(length int) *Buffer {
	if length < 0 {
		length = 0
	}
	return &Buffer{samples: make([]float64, length)}
}

// FromSlice wraps an existing slice without copying.
// Mutations to the slice are visible through the Buffer and vice versa.
func FromSlice(s []float64) *Buffer {
	return &Buffer{samples: s}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Len returns the current number of samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Resize sets the length to n, reusing existing capacity when possible.
// New elements beyond the previous length are zeroed.
func (b *Buffer) Resize(n int) {
	if n < 0 {
		n = 0
	}
	oldLen := len(b.samples)
	if n <= cap(b.samples) {
		b.samples = b.samples[:n]
	} else {
		s := make([]float64, n)
		copy(s, b.samples)
		b.samples = s
	}
	// Zero any newly exposed elements that may have stale data from
	// previous use of the backing array.
	if n > oldLen {
		for i := oldLen; i < n; i++ {
			b.samples[i] = 0
		}
	}
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	for i := range b.samples {
		b.samples[i] = 0
	}
}

// Copy returns a deep copy of the buffer.
func (b *Buffer) Copy() *Buffer {
	s := make([]float64, len(b.samples))
	copy(s, b.samples)
	return &Buffer{samples: s}
}
