package routepath

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Parsed
	}{
		{"plain", "/a/b", Parsed{Path: "/a/b"}},
		{"query", "/a?x=1", Parsed{Path: "/a", Query: "x=1"}},
		{"hash", "/a#top", Parsed{Path: "/a", Hash: "#top"}},
		{"query and hash", "/a?x=1#top", Parsed{Path: "/a", Query: "x=1", Hash: "#top"}},
		{"question mark in hash", "/a#top?x=1", Parsed{Path: "/a", Hash: "#top?x=1"}},
		{"empty", "", Parsed{}},
		{"only query", "?x=1", Parsed{Query: "x=1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.input); got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		relative   string
		base       string
		appendPath bool
		want       string
	}{
		{"/abs", "/a/b", false, "/abs"},
		{"?x=1", "/a/b", false, "/a/b?x=1"},
		{"#top", "/a/b", false, "/a/b#top"},
		{"c", "/a/b", false, "/a/c"},
		{"c", "/a/b", true, "/a/b/c"},
		{"c", "/a/b/", true, "/a/b/c"},
		{"c", "/a/b/", false, "/a/b/c"},
		{"../c", "/a/b", false, "/c"},
		{"./c", "/a/b", false, "/a/c"},
		{"../../../c", "/a/b", false, "/c"},
		{"c", "", false, "/c"},
	}

	for _, tt := range tests {
		if got := Resolve(tt.relative, tt.base, tt.appendPath); got != tt.want {
			t.Errorf("Resolve(%q, %q, %v) = %q, want %q", tt.relative, tt.base, tt.appendPath, got, tt.want)
		}
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"/a//b":   "/a/b",
		"//a///b": "/a/b",
		"/a/b":    "/a/b",
	}
	for in, want := range tests {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateNavPath(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"/users/1?tab=info#x", nil},
		{"/a%20b", nil},
		{"https://evil.example/", ErrInvalidPath},
		{"//evil.example/", ErrInvalidPath},
		{"relative", ErrInvalidPath},
		{"/a\\b", ErrBackslashInPath},
		{"/a%00b", ErrNullByteInPath},
		{"/a%zz", ErrInvalidPercentEscape},
		{"/a%2", ErrInvalidPercentEscape},
	}

	for _, tt := range tests {
		got, err := ValidateNavPath(tt.input)
		if err != tt.wantErr {
			t.Errorf("ValidateNavPath(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.input {
			t.Errorf("ValidateNavPath(%q) = %q, want input unchanged", tt.input, got)
		}
	}
}
