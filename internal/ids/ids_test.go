package ids

import "testing"

func TestNewRunID(t *testing.T) {
	a := NewRunID()
	b := NewRunID()

	if len(a) != RunIDLength {
		t.Errorf("len = %d, want %d", len(a), RunIDLength)
	}
	for _, c := range a {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Errorf("run ID %q contains non-hex character %q", a, c)
		}
	}
	if a == b {
		t.Errorf("two run IDs collided: %q", a)
	}
}
