package config

import (
	"context"
	"os"
	"strconv"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/pathpattern"
	"github.com/vango-dev/vroute/pkg/router"
)

// RouteFile is the on-disk form of a route table.
//
//	routes:
//	  - path: /
//	    name: home
//	    component: Home
//	  - path: /users/:id
//	    component: User
//	    props: params
//	    children:
//	      - path: posts
//	        component: UserPosts
//	  - path: /old
//	    redirect: /
type RouteFile struct {
	Routes []RouteSpec `yaml:"routes" json:"routes" toml:"routes"`
}

// PropsFromParams is the props value that hands route params to the view.
const PropsFromParams = "params"

// RouteSpec is one route in a RouteFile. Components are referred to by
// name.
type RouteSpec struct {
	Path       string            `yaml:"path" json:"path" toml:"path"`
	Name       string            `yaml:"name,omitempty" json:"name,omitempty" toml:"name,omitempty"`
	Component  string            `yaml:"component,omitempty" json:"component,omitempty" toml:"component,omitempty"`
	Components map[string]string `yaml:"components,omitempty" json:"components,omitempty" toml:"components,omitempty"`

	// Redirect is a target path. RedirectName redirects to a named
	// route instead; at most one of them is set.
	Redirect     string `yaml:"redirect,omitempty" json:"redirect,omitempty" toml:"redirect,omitempty"`
	RedirectName string `yaml:"redirectName,omitempty" json:"redirectName,omitempty" toml:"redirectName,omitempty"`

	Alias []string       `yaml:"alias,omitempty" json:"alias,omitempty" toml:"alias,omitempty"`
	Meta  map[string]any `yaml:"meta,omitempty" json:"meta,omitempty" toml:"meta,omitempty"`

	// Props is empty or "params". StaticProps, when set, wins.
	Props       string         `yaml:"props,omitempty" json:"props,omitempty" toml:"props,omitempty"`
	StaticProps map[string]any `yaml:"staticProps,omitempty" json:"staticProps,omitempty" toml:"staticProps,omitempty"`

	CaseSensitive *bool                `yaml:"caseSensitive,omitempty" json:"caseSensitive,omitempty" toml:"caseSensitive,omitempty"`
	PathOptions   *pathpattern.Options `yaml:"pathOptions,omitempty" json:"pathOptions,omitempty" toml:"pathOptions,omitempty"`

	Children []RouteSpec `yaml:"children,omitempty" json:"children,omitempty" toml:"children,omitempty"`
}

// RouteConfigs converts the file into router configs.
func (f *RouteFile) RouteConfigs() ([]router.RouteConfig, error) {
	return convertSpecs(f.Routes, "")
}

func convertSpecs(specs []RouteSpec, parent string) ([]router.RouteConfig, error) {
	out := make([]router.RouteConfig, 0, len(specs))
	for i, spec := range specs {
		rc, err := spec.routeConfig(parent, i)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, nil
}

func (s RouteSpec) routeConfig(parent string, index int) (router.RouteConfig, error) {
	where := parent + "/" + s.Path
	if parent == "" && s.Path == "" {
		return router.RouteConfig{}, errors.New(errors.CodeRoutesInvalid).
			WithDetail("route " + strconv.Itoa(index) + " has no path").
			WithSuggestion("Top-level routes need a path such as /")
	}
	if s.Redirect != "" && s.RedirectName != "" {
		return router.RouteConfig{}, errors.New(errors.CodeRoutesInvalid).
			WithDetail("redirect and redirectName are both set").
			WithRoutes(where)
	}
	if s.Props != "" && s.Props != PropsFromParams {
		return router.RouteConfig{}, errors.New(errors.CodeRoutesInvalid).
			WithDetail("props must be empty or " + strconv.Quote(PropsFromParams) + ", got " + strconv.Quote(s.Props)).
			WithRoutes(where)
	}

	rc := router.RouteConfig{
		Path:          s.Path,
		Name:          s.Name,
		Alias:         s.Alias,
		CaseSensitive: s.CaseSensitive,
		PathOptions:   s.PathOptions,
	}
	if s.Component != "" {
		rc.Component = s.Component
	}
	if len(s.Components) > 0 {
		rc.Components = make(map[string]router.Component, len(s.Components))
		for view, name := range s.Components {
			rc.Components[view] = name
		}
	}
	if len(s.Meta) > 0 {
		rc.Meta = router.Meta(s.Meta)
	}

	switch {
	case s.Redirect != "":
		rc.Redirect = router.RedirectTo(router.Path(s.Redirect))
	case s.RedirectName != "":
		rc.Redirect = router.RedirectTo(router.Location{Name: s.RedirectName})
	}

	switch {
	case len(s.StaticProps) > 0:
		rc.Props = router.StaticProps(s.StaticProps)
	case s.Props == PropsFromParams:
		rc.Props = router.PropsFromParams()
	}

	if len(s.Children) > 0 {
		children, err := convertSpecs(s.Children, where)
		if err != nil {
			return router.RouteConfig{}, err
		}
		rc.Children = children
	}
	return rc, nil
}

// ParseRoutes decodes a route table. name selects the format and
// locates errors.
func ParseRoutes(name string, data []byte) ([]router.RouteConfig, error) {
	var f RouteFile
	if err := decodeAs(name, data, &f, errors.CodeRoutesParse); err != nil {
		return nil, err
	}
	return f.RouteConfigs()
}

// LoadRoutes reads and decodes the route table at source, a file path
// or an s3://bucket/key URL.
func LoadRoutes(ctx context.Context, source string, opts ...SourceOption) ([]router.RouteConfig, error) {
	data, err := ReadSource(ctx, source, opts...)
	if err != nil {
		return nil, err
	}
	return ParseRoutes(source, data)
}

// ReadSource returns the raw bytes at source.
func ReadSource(ctx context.Context, source string, opts ...SourceOption) ([]byte, error) {
	if IsS3Source(source) {
		o := sourceOptions{}
		for _, opt := range opts {
			opt(&o)
		}
		return readS3(ctx, o.s3, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeRoutesNotFound).
				WithDetail("No route table at " + source)
		}
		return nil, errors.New(errors.CodeRoutesParse).Wrap(err)
	}
	return data, nil
}
