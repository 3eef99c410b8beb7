package record

import "testing"

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "INFO", want: Info},
		{in: "info", want: Info},
		{in: " Warning ", want: Warning},
		{in: "warn", want: Warning},
		{in: "fatal", want: Critical},
		{in: "DEBUG", want: Debug},
		{in: "25", want: 25},
		{in: "-5", want: -5},
		{in: "", wantErr: true},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) error = nil, want non-nil", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLevelName(t *testing.T) {
	t.Parallel()

	tests := map[int]string{
		Debug:    "DEBUG",
		Info:     "INFO",
		Warning:  "WARNING",
		Error:    "ERROR",
		Critical: "CRITICAL",
		25:       "Level 25",
	}
	for n, want := range tests {
		if got := LevelName(n); got != want {
			t.Errorf("LevelName(%d) = %q, want %q", n, got, want)
		}
	}
}

// TestLevelNameRoundTrip verifies that each canonical name parses back to its
// number.
func TestLevelNameRoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int{NotSet, Debug, Info, Warning, Error, Critical} {
		got, err := ParseLevel(LevelName(n))
		if err != nil || got != n {
			t.Errorf("ParseLevel(LevelName(%d)) = %d, %v", n, got, err)
		}
	}
}
