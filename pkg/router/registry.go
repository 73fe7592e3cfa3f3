package router

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/vango-dev/vroute/pkg/pathpattern"
	"github.com/vango-dev/vroute/pkg/routepath"
)

// Registry holds the flattened route table: records in registration
// order, the priority-ordered path list, and the path and name indexes.
//
// Tables only grow. Add may run concurrently with lookups.
type Registry struct {
	mu       sync.RWMutex
	records  []*RouteRecord
	pathList []string
	pathMap  map[string]*RouteRecord
	nameMap  map[string]*RouteRecord
	warnings []Warning
	logger   *slog.Logger
}

// NewRegistry returns an empty registry. A nil logger uses slog.Default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default().With("component", "registry")
	}
	return &Registry{
		pathMap: make(map[string]*RouteRecord),
		nameMap: make(map[string]*RouteRecord),
		logger:  logger,
	}
}

// BuildRegistry returns a registry holding routes.
func BuildRegistry(routes []RouteConfig, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	if err := r.Add(routes); err != nil {
		return nil, err
	}
	return r, nil
}

// build is the scratch state of one Add call. It is committed only when
// every record compiled.
type build struct {
	base     int
	records  []*RouteRecord
	pathList []string
	pathMap  map[string]*RouteRecord
	nameMap  map[string]*RouteRecord
	warnings []Warning
}

// Add registers routes. Existing entries keep their priority; wildcard
// paths are moved behind everything else. A path template that fails to
// compile rejects the whole call and leaves the registry unchanged.
func (r *Registry) Add(routes []RouteConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := &build{
		base:     len(r.records),
		pathList: append([]string(nil), r.pathList...),
		pathMap:  make(map[string]*RouteRecord, len(r.pathMap)),
		nameMap:  make(map[string]*RouteRecord, len(r.nameMap)),
	}
	for k, v := range r.pathMap {
		b.pathMap[k] = v
	}
	for k, v := range r.nameMap {
		b.nameMap[k] = v
	}

	for i := range routes {
		if err := b.addRecord(&routes[i], nil, ""); err != nil {
			return err
		}
	}
	b.pathList = sinkWildcards(b.pathList)

	r.records = append(r.records, b.records...)
	r.pathList = b.pathList
	r.pathMap = b.pathMap
	r.nameMap = b.nameMap
	for _, w := range b.warnings {
		logWarning(r.logger, w)
	}
	r.warnings = append(r.warnings, b.warnings...)
	return nil
}

func (b *build) warn(w Warning) {
	b.warnings = append(b.warnings, w)
}

func (b *build) addRecord(cfg *RouteConfig, parent *RouteRecord, matchAs string) error {
	var opts pathpattern.Options
	if cfg.PathOptions != nil {
		opts = *cfg.PathOptions
	}
	if cfg.CaseSensitive != nil {
		opts.Sensitive = *cfg.CaseSensitive
	}

	path := normalizeRecordPath(cfg.Path, parent, opts.Strict)
	pattern, err := pathpattern.Compile(path, opts)
	if err != nil {
		return fmt.Errorf("route %q: %w", path, err)
	}

	seen := make(map[string]bool)
	for _, k := range pattern.Keys() {
		if seen[k.Name] {
			b.warn(Warning{
				Code:    WarnDuplicateParam,
				Message: fmt.Sprintf("duplicate param key %q in route with path %q", k.Name, path),
				Path:    path,
			})
		}
		seen[k.Name] = true
	}

	components := cfg.Components
	if components == nil {
		// A single view is always "default", even without a component.
		components = map[string]Component{DefaultView: cfg.Component}
	} else {
		copied := make(map[string]Component, len(components))
		for k, v := range components {
			copied[k] = v
		}
		components = copied
	}

	props := make(map[string]Props)
	if cfg.PropsByView != nil {
		for k, v := range cfg.PropsByView {
			props[k] = v
		}
	} else if cfg.Props != nil {
		props[DefaultView] = cfg.Props
	}

	rec := &RouteRecord{
		id:          RecordID(b.base + len(b.records)),
		parent:      NoRecord,
		path:        path,
		pattern:     pattern,
		name:        cfg.Name,
		components:  components,
		views:       viewOrder(components),
		matchAs:     matchAs,
		aliased:     matchAs != "",
		redirect:    cfg.Redirect,
		beforeEnter: cfg.BeforeEnter,
		meta:        cfg.Meta.clone(),
		props:       props,
	}
	if parent != nil {
		rec.parent = parent.id
	}
	b.records = append(b.records, rec)

	if len(cfg.Children) > 0 {
		if cfg.Name != "" && cfg.Redirect == nil {
			for _, child := range cfg.Children {
				if child.Path == "" || child.Path == "/" {
					b.warn(Warning{
						Code: WarnUnreachableDefaultChild,
						Message: fmt.Sprintf(
							"named route %q has a default child route; navigating to it by name will not render the default child",
							cfg.Name),
						Path: path,
						Name: cfg.Name,
					})
					break
				}
			}
		}
		for i := range cfg.Children {
			child := &cfg.Children[i]
			childMatchAs := ""
			if matchAs != "" {
				childMatchAs = routepath.Clean(matchAs + "/" + child.Path)
			}
			if err := b.addRecord(child, rec, childMatchAs); err != nil {
				return err
			}
		}
	}

	for _, alias := range cfg.Alias {
		aliasCfg := &RouteConfig{Path: alias, Children: cfg.Children}
		target := rec.path
		if target == "" {
			target = "/"
		}
		if err := b.addRecord(aliasCfg, parent, target); err != nil {
			return err
		}
	}

	if _, ok := b.pathMap[rec.path]; !ok {
		b.pathList = append(b.pathList, rec.path)
		b.pathMap[rec.path] = rec
	}

	if rec.name != "" {
		if _, ok := b.nameMap[rec.name]; !ok {
			b.nameMap[rec.name] = rec
		} else if matchAs == "" {
			b.warn(Warning{
				Code:    WarnDuplicateName,
				Message: fmt.Sprintf("duplicate named route definition: { name: %q, path: %q }", rec.name, rec.path),
				Path:    rec.path,
				Name:    rec.name,
			})
		}
	}
	return nil
}

// normalizeRecordPath makes a configured path absolute. A trailing slash
// is dropped unless strict. Relative paths join their parent's path;
// top-level relative paths are rooted, except the bare wildcard.
func normalizeRecordPath(path string, parent *RouteRecord, strict bool) string {
	if !strict {
		path = strings.TrimSuffix(path, "/")
	}
	if strings.HasPrefix(path, "/") {
		return path
	}
	if parent == nil {
		if path == "*" {
			return path
		}
		return "/" + path
	}
	return routepath.Clean(parent.path + "/" + path)
}

// isWildcard reports whether path is a catch-all.
func isWildcard(path string) bool {
	return path == "*" || strings.HasSuffix(path, "/*")
}

// sinkWildcards moves catch-all paths to the end, keeping relative order
// in both partitions.
func sinkWildcards(list []string) []string {
	out := make([]string, 0, len(list))
	var wild []string
	for _, p := range list {
		if isWildcard(p) {
			wild = append(wild, p)
		} else {
			out = append(out, p)
		}
	}
	return append(out, wild...)
}

// Record returns the record with the given handle.
func (r *Registry) Record(id RecordID) (*RouteRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || int(id) >= len(r.records) {
		return nil, false
	}
	return r.records[id], true
}

// Records returns every record in registration order, including alias
// and shadowed records.
func (r *Registry) Records() []*RouteRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*RouteRecord(nil), r.records...)
}

// PathList returns the paths in matching priority order.
func (r *Registry) PathList() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.pathList...)
}

// ByPath returns the record registered for an absolute path template.
func (r *Registry) ByPath(path string) (*RouteRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.pathMap[path]
	return rec, ok
}

// ByName returns the record registered under name.
func (r *Registry) ByName(name string) (*RouteRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.nameMap[name]
	return rec, ok
}

// Warnings returns the configuration warnings collected so far.
func (r *Registry) Warnings() []Warning {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Warning(nil), r.warnings...)
}

// Chain returns rec and its ancestors, root first.
func (r *Registry) Chain(rec *RouteRecord) []*RouteRecord {
	if rec == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chain []*RouteRecord
	for cur := rec; cur != nil; {
		chain = append(chain, cur)
		if cur.parent == NoRecord || int(cur.parent) >= len(r.records) {
			break
		}
		cur = r.records[cur.parent]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Fingerprint returns a digest of the matching table: the priority order
// of paths plus the name and alias target of each entry. Two registries
// with equal fingerprints resolve paths identically.
func (r *Registry) Fingerprint() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := blake3.New()
	for _, p := range r.pathList {
		rec := r.pathMap[p]
		fmt.Fprintf(h, "%s\x00%s\x00%s\n", p, rec.name, rec.matchAs)
	}
	return hex.EncodeToString(h.Sum(nil))
}
