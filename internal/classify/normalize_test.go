package classify

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Show.Name.S01E01", "Show Name S01E01"},
		{"Some_Show_Title", "Some Show Title"},
		{"Movie [1080p BluRay x264]", "Movie"},
		{"Movie (2020) (WEBRip)", "Movie (2020)"},
		{"Movie 720p HDTV AAC", "Movie"},
		{"Film - Extended Cut", "Film"},
		{"Film - Director's Cut", "Film"},
		{"Saga Part 2", "Saga"},
		{"Show  Name    Here", "Show Name Here"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTitle_idempotent(t *testing.T) {
	inputs := []string{
		"Show.Name.S01E01.1080p.WEBRip.x264",
		"Movie (2020) [720p]",
		"Film - Theatrical Cut Part 3",
		"Plain Title",
		"weird---_.__title",
	}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		twice := NormalizeTitle(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
