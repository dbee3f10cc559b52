package wavio

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-pitchfx/internal/testutil"
)

func TestWriteReadRoundTrip(t *testing.T) {
	const sampleRate = 48000

	path := filepath.Join(t.TempDir(), "tone.wav")
	want := testutil.DeterministicSine(440, sampleRate, 0.5, 4800)

	if err := WriteMono(path, want, sampleRate); err != nil {
		t.Fatalf("WriteMono() error = %v", err)
	}

	got, gotRate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono() error = %v", err)
	}

	if gotRate != sampleRate {
		t.Fatalf("sample rate = %d, want %d", gotRate, sampleRate)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}

	// 16-bit quantization bounds the round-trip error.
	maxDiff, err := testutil.MaxAbsDiff(got, want)
	if err != nil {
		t.Fatal(err)
	}
	if maxDiff > 1.0/(1<<14) {
		t.Fatalf("max round-trip error = %v", maxDiff)
	}
}

func TestWriteMonoClips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")

	if err := WriteMono(path, []float64{2, -2, 0}, 48000); err != nil {
		t.Fatalf("WriteMono() error = %v", err)
	}

	got, _, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono() error = %v", err)
	}

	if math.Abs(got[0]-1) > 0.01 || math.Abs(got[1]+1) > 0.01 || got[2] != 0 {
		t.Fatalf("clipped samples = %v", got)
	}
}

func TestWriteMonoRejectsBadRate(t *testing.T) {
	if err := WriteMono(filepath.Join(t.TempDir(), "x.wav"), []float64{0}, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestReadMonoRejectsMissingFile(t *testing.T) {
	if _, _, err := ReadMono(filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
