package format

import (
	"reflect"
	"testing"
)

func TestCleanPackages(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil", input: nil, want: []string{}},
		{name: "trims", input: []string{" git", "vim\t"}, want: []string{"git", "vim"}},
		{name: "drops empty", input: []string{"", "  ", "htop"}, want: []string{"htop"}},
		{name: "dedupes keeping first", input: []string{"vim", "git", " vim"}, want: []string{"vim", "git"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPackages(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CleanPackages(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
