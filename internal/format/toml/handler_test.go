package toml

import (
	"reflect"
	"strings"
	"testing"

	"github.com/timasoft/declair/internal/format"
)

func TestHandler_Encode(t *testing.T) {
	h := New()

	got, err := h.Encode(format.Listing{
		Source:   "/etc/nixos/configuration.nix",
		Packages: []string{"git", "vim"},
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := "source = \"/etc/nixos/configuration.nix\"\npackages = [\"git\", \"vim\"]\n"
	if string(got) != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestHandler_Decode(t *testing.T) {
	h := New()

	tests := []struct {
		name    string
		input   string
		want    format.Listing
		wantErr string
	}{
		{
			name:  "listing",
			input: "source = \"a.nix\"\npackages = [\"git\", \"vim\"]\n",
			want:  format.Listing{Source: "a.nix", Packages: []string{"git", "vim"}},
		},
		{
			name:  "multi-line array with comments",
			input: "# exported\npackages = [\n  \"git\", # core\n  \"git\",\n  \"htop\",\n]\n",
			want:  format.Listing{Packages: []string{"git", "htop"}},
		},
		{
			name:    "missing packages",
			input:   "source = \"a.nix\"\n",
			wantErr: "missing",
		},
		{
			name:    "unknown key",
			input:   "packages = [\"git\"]\npackage = [\"vim\"]\n",
			wantErr: "unknown keys: package",
		},
		{
			name:    "invalid toml",
			input:   `[invalid`,
			wantErr: "TOML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Decode([]byte(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Decode() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandler_RoundTrip(t *testing.T) {
	h := New()
	in := format.Listing{Source: "home.nix", Packages: []string{"ripgrep", "nerd-fonts.fira-code"}}

	data, err := h.Encode(in)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out, err := h.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}
