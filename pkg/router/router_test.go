package router

import (
	"testing"

	"github.com/vango-dev/vroute/pkg/query"
)

func TestNewRejectsInvalidTemplate(t *testing.T) {
	if _, err := New([]RouteConfig{{Path: "/:id([)"}}, WithLogger(discardLogger())); err == nil {
		t.Error("New should fail for an invalid param pattern")
	}
}

func TestRouterResolve(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		to   RawLocation
		href string
		full string
	}{
		{"plain", nil, Path("/user/1?x=1"), "/user/1?x=1", "/user/1?x=1"},
		{"base", []Option{WithBase("app/")}, Path("/user/1"), "/app/user/1", "/user/1"},
		{"hash", []Option{WithMode(ModeHash)}, Path("/user/1"), "#/user/1", "/user/1"},
		{"hash with base", []Option{WithMode(ModeHash), WithBase("/app")}, Path("/user/1"), "/app/#/user/1", "/user/1"},
		{"redirect keeps source href", nil, Path("/old"), "/old", "/user/1"},
		{"named", nil, Location{Name: "user", Params: Params{"id": "3"}}, "/user/3", "/user/3"},
	}

	routes := []RouteConfig{
		{Path: "/user/:id", Name: "user"},
		{Path: "/old", Redirect: RedirectTo(Path("/user/1"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, routes, tt.opts...)
			res := r.Resolve(tt.to, nil, false)
			if res.Href != tt.href {
				t.Errorf("Href = %q, want %q", res.Href, tt.href)
			}
			if res.Route.FullPath() != tt.full {
				t.Errorf("Route.FullPath() = %q, want %q", res.Route.FullPath(), tt.full)
			}
		})
	}
}

func TestRouterNavigateWithQuery(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/search"}})

	route, err := push(t, r, Path("/search?q=old&page=2"), WithQuery(query.Query{"q": {"new"}}))
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if want := "/search?page=2&q=new"; route.FullPath() != want {
		t.Errorf("FullPath() = %q, want %q", route.FullPath(), want)
	}
}

func TestRouterNavigateCallbacksChain(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "/a"}})

	var calls []string
	r.Navigate(Path("/a"),
		OnComplete(func(*Route) { calls = append(calls, "first") }),
		OnComplete(func(*Route) { calls = append(calls, "second") }),
	)
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v, want [first second]", calls)
	}
}

func TestRouterAddRoutes(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{{Path: "*", Component: "fallback"}})
	mustPush(t, r, Path("/late"))
	if got := leafPath(r.CurrentRoute()); got != "*" {
		t.Fatalf("leaf = %q, want *", got)
	}

	if err := r.AddRoutes([]RouteConfig{{Path: "/late", Component: "late"}}); err != nil {
		t.Fatalf("AddRoutes: %v", err)
	}
	if got := leafPath(r.CurrentRoute()); got != "/late" {
		t.Errorf("after AddRoutes leaf = %q, want /late", got)
	}
}

func TestRouterMatchedComponents(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{
		{Path: "/p", Component: "parent", Children: []RouteConfig{
			{Path: "c", Components: map[string]Component{DefaultView: "child", "aside": "aside"}},
		}},
	})

	got := r.MatchedComponents(Path("/p/c"))
	want := []Component{"parent", "child", "aside"}
	if len(got) != len(want) {
		t.Fatalf("MatchedComponents() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MatchedComponents()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if n := len(r.MatchedComponents(nil)); n != 0 {
		t.Errorf("MatchedComponents(nil) before navigating = %d components, want 0", n)
	}
}

func TestRecordProps(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{
		{Path: "/params/:id", Props: PropsFromParams()},
		{Path: "/static", Props: StaticProps(map[string]any{"title": "Static"})},
		{Path: "/fn", Props: PropsFunc(func(route *Route) map[string]any {
			return map[string]any{"q": route.Query().Get("q")}
		})},
		{Path: "/none"},
	})

	tests := []struct {
		path string
		key  string
		want any
	}{
		{"/params/9", "id", "9"},
		{"/static", "title", "Static"},
		{"/fn?q=go", "q", "go"},
	}
	for _, tt := range tests {
		route := r.Match(Path(tt.path))
		props := route.Matched()[0].Props(route, DefaultView)
		if props[tt.key] != tt.want {
			t.Errorf("%s: props[%s] = %v, want %v", tt.path, tt.key, props[tt.key], tt.want)
		}
	}

	none := r.Match(Path("/none"))
	if props := none.Matched()[0].Props(none, DefaultView); props != nil {
		t.Errorf("props = %v, want nil", props)
	}
}

func TestRouterLink(t *testing.T) {
	r := newTestRouter(t, []RouteConfig{
		{Path: "/a", Children: []RouteConfig{{Path: "b"}}},
		{Path: "/c"},
	}, WithBase("/app"))
	mustPush(t, r, Path("/a/b"))

	tests := []struct {
		name        string
		to          RawLocation
		opts        LinkOptions
		href        string
		active      bool
		exactActive bool
	}{
		{"ancestor", Path("/a"), LinkOptions{}, "/app/a", true, false},
		{"ancestor exact", Path("/a"), LinkOptions{Exact: true}, "/app/a", false, false},
		{"same", Path("/a/b"), LinkOptions{}, "/app/a/b", true, true},
		{"other", Path("/c"), LinkOptions{}, "/app/c", false, false},
		{"relative append", Path("x"), LinkOptions{Append: true}, "/app/a/b/x", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := r.Link(tt.to, tt.opts)
			if l.Href != tt.href {
				t.Errorf("Href = %q, want %q", l.Href, tt.href)
			}
			if l.Active != tt.active {
				t.Errorf("Active = %v, want %v", l.Active, tt.active)
			}
			if l.ExactActive != tt.exactActive {
				t.Errorf("ExactActive = %v, want %v", l.ExactActive, tt.exactActive)
			}
		})
	}

	l := r.Link(Path("/a/b"), LinkOptions{ActiveClass: "on"})
	if len(l.Classes) != 2 || l.Classes[0] != "on" || l.Classes[1] != DefaultExactActiveClass {
		t.Errorf("Classes = %v, want [on %s]", l.Classes, DefaultExactActiveClass)
	}
	if nl := r.NavLink(Path("/a")); nl.Active {
		t.Error("NavLink(/a) should not be active on /a/b")
	}
}
