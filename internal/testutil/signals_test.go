package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestSineBlocksAreContiguous(t *testing.T) {
	const (
		blockSize = 64
		count     = 4
	)

	blocks := SineBlocks(440, 48000, 0.8, blockSize, count)
	if len(blocks) != count {
		t.Fatalf("len = %d, want %d", len(blocks), count)
	}

	full := DeterministicSine(440, 48000, 0.8, blockSize*count)
	for b, block := range blocks {
		if len(block) != blockSize {
			t.Fatalf("block %d len = %d", b, len(block))
		}
		for i, v := range block {
			if v != full[b*blockSize+i] {
				t.Fatalf("block %d sample %d = %v, want %v", b, i, v, full[b*blockSize+i])
			}
		}
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}
}

func TestImpulse(t *testing.T) {
	imp := Impulse(8, 3)
	for i, v := range imp {
		if i == 3 && v != 1 {
			t.Fatalf("imp[3] = %v, want 1", v)
		}
		if i != 3 && v != 0 {
			t.Fatalf("imp[%d] = %v, want 0", i, v)
		}
	}

	for i, v := range Impulse(4, 10) {
		if v != 0 {
			t.Fatalf("imp[%d] = %v, want all zeros for out-of-bounds pos", i, v)
		}
	}
}
