package checksum

import "testing"

func TestSumStable(t *testing.T) {
	a := Sum([]byte("family"))
	if a != Sum([]byte("family")) || len(a) != 64 {
		t.Errorf("Sum = %q", a)
	}
	if a == Sum([]byte("family!")) {
		t.Error("different input, same sum")
	}
}

func TestMatches(t *testing.T) {
	tag := ETag([]byte("tree"))
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"*", true},
		{tag, true},
		{"W/" + tag, true},
		{`"other", ` + tag, true},
		{`"other"`, false},
		{Sum([]byte("tree")), false},
	}
	for _, tt := range tests {
		if got := Matches(tt.header, tag); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
