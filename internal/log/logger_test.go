package log

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{in: "debug", want: LevelDebug, wantOK: true},
		{in: "INFO", want: LevelInfo, wantOK: true},
		{in: "Warning", want: LevelWarn, wantOK: true},
		{in: "error", want: LevelError, wantOK: true},
		{in: "bogus", want: LevelInfo, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	prev := GetLevel()
	defer SetLevel(prev)

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Fatalf("GetLevel() = %v, want LevelError", GetLevel())
	}

	if shouldLog(LevelWarn) {
		t.Fatal("warn should be suppressed at error level")
	}
	if !shouldLog(LevelError) {
		t.Fatal("error should pass at error level")
	}
}

func TestLevelString(t *testing.T) {
	if Level(99).String() != "UNKNOWN" {
		t.Fatalf("unexpected string for out-of-range level: %s", Level(99))
	}
}
