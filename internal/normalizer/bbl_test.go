package normalizer

import "testing"

func TestCleanBBL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dashed", "1-00199-0025", "1001990025"},
		{"float serialization", "1001990025.0", "1001990025"},
		{"plain", "1001990025", "1001990025"},
		{"spaces and letters", " 1 / 00199 / 0025 lot", "1001990025"},
		{"empty", "", ""},
		{"no digits", "n/a", ""},
		{"decimal never rounded", "1001990025.9", "1001990025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanBBL(tt.in); got != tt.want {
				t.Errorf("CleanBBL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanBBL_Idempotent(t *testing.T) {
	inputs := []string{"1-00199-0025", "1001990025.0", "", "abc123", "5.5.5"}

	for _, in := range inputs {
		once := CleanBBL(in)
		twice := CleanBBL(once)

		if once != twice {
			t.Errorf("CleanBBL not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCleanBBL_DigitsOnly(t *testing.T) {
	inputs := []string{"1-00199-0025", "BBL 3012340056", "12.34", "x-y-z"}

	for _, in := range inputs {
		got := CleanBBL(in)
		for _, r := range got {
			if r < '0' || r > '9' {
				t.Errorf("CleanBBL(%q) = %q contains non-digit %q", in, got, r)
			}
		}
	}
}

func TestValidKey(t *testing.T) {
	if ValidKey("123") {
		t.Error("ValidKey accepted a 3-digit key")
	}

	if ValidKey("") {
		t.Error("ValidKey accepted an empty key")
	}

	if !ValidKey("100199002") {
		t.Error("ValidKey rejected a 9-digit key")
	}

	if !ValidKey("1001990025") {
		t.Error("ValidKey rejected a 10-digit key")
	}
}
