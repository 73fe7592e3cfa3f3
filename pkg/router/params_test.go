package router

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestParamParser(t *testing.T) {
	type target struct {
		ID      int       `param:"id"`
		Slug    string    `param:"slug"`
		Rest    []string  `param:"pathMatch"`
		Ratio   float64   `param:"ratio"`
		Enabled bool      `param:"enabled"`
		Owner   uuid.UUID `param:"owner"`
		Ignored string
	}

	owner := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	params := Params{
		"id":        "42",
		"slug":      "hello",
		"pathMatch": "a/b/c",
		"ratio":     "0.5",
		"enabled":   "true",
		"owner":     owner.String(),
	}

	var got target
	if err := NewParamParser().Parse(params, &got); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.ID != 42 {
		t.Errorf("ID = %d, want 42", got.ID)
	}
	if got.Slug != "hello" {
		t.Errorf("Slug = %q, want %q", got.Slug, "hello")
	}
	if len(got.Rest) != 3 || got.Rest[2] != "c" {
		t.Errorf("Rest = %v, want [a b c]", got.Rest)
	}
	if got.Ratio != 0.5 {
		t.Errorf("Ratio = %v, want 0.5", got.Ratio)
	}
	if !got.Enabled {
		t.Error("Enabled = false, want true")
	}
	if got.Owner != owner {
		t.Errorf("Owner = %v, want %v", got.Owner, owner)
	}
}

func TestParamParserErrors(t *testing.T) {
	type ints struct {
		ID int8 `param:"id"`
	}

	tests := []struct {
		name   string
		params Params
		target any
	}{
		{"not a pointer", Params{}, ints{}},
		{"pointer to non-struct", Params{}, new(int)},
		{"invalid int", Params{"id": "abc"}, &ints{}},
		{"overflow", Params{"id": "300"}, &ints{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewParamParser().Parse(tt.params, tt.target); err == nil {
				t.Error("Parse() should fail")
			}
		})
	}

	if err := NewParamParser().Parse(Params{}, 5); !errors.Is(err, ErrBindTarget) {
		t.Errorf("Parse() = %v, want ErrBindTarget", err)
	}
}

func TestRouteBindParams(t *testing.T) {
	m := newTestMatcher(t, []RouteConfig{{Path: "/user/:id"}})
	route := m.Match(Path("/user/17"), nil)

	var p struct {
		ID uint `param:"id"`
	}
	if err := route.BindParams(&p); err != nil {
		t.Fatalf("BindParams: %v", err)
	}
	if p.ID != 17 {
		t.Errorf("ID = %d, want 17", p.ID)
	}
}

func TestValidateParam(t *testing.T) {
	tests := []struct {
		value, typ string
		ok         bool
	}{
		{"12", "int", true},
		{"-1", "uint", false},
		{"x", "int", false},
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", "uuid", true},
		{"not-a-uuid", "uuid", false},
		{"anything", "string", true},
		{"anything", "custom", true},
	}
	for _, tt := range tests {
		err := ValidateParam(tt.value, tt.typ)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateParam(%q, %q) = %v, want ok=%v", tt.value, tt.typ, err, tt.ok)
		}
	}
}
