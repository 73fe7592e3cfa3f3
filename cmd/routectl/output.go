package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/vango-dev/vroute/pkg/router"
)

// routeView is the JSON form of a matched route.
type routeView struct {
	FullPath       string              `json:"fullPath"`
	Path           string              `json:"path"`
	Name           string              `json:"name,omitempty"`
	Params         map[string]string   `json:"params"`
	// Query maps bare keys to null.
	Query          map[string][]string `json:"query"`
	Hash           string              `json:"hash,omitempty"`
	Matched        []string            `json:"matched"`
	Meta           map[string]any      `json:"meta,omitempty"`
	RedirectedFrom string              `json:"redirectedFrom,omitempty"`
}

func viewRoute(r *router.Route) routeView {
	v := routeView{
		FullPath:       r.FullPath(),
		Path:           r.Path(),
		Name:           r.Name(),
		Params:         map[string]string(r.Params()),
		Query:          map[string][]string{},
		Hash:           r.Hash(),
		Matched:        []string{},
		Meta:           map[string]any(r.Meta()),
		RedirectedFrom: r.RedirectedFrom(),
	}
	for k, vals := range r.Query() {
		v.Query[k] = vals
	}
	for _, rec := range r.Matched() {
		v.Matched = append(v.Matched, rec.Path())
	}
	if v.Params == nil {
		v.Params = map[string]string{}
	}
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRoute writes a route as aligned key/value lines.
func printRoute(w io.Writer, r *router.Route) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	v := viewRoute(r)
	fmt.Fprintf(tw, "fullPath:\t%s\n", v.FullPath)
	if v.Name != "" {
		fmt.Fprintf(tw, "name:\t%s\n", v.Name)
	}
	if v.RedirectedFrom != "" {
		fmt.Fprintf(tw, "redirectedFrom:\t%s\n", v.RedirectedFrom)
	}
	if len(v.Params) > 0 {
		fmt.Fprintf(tw, "params:\t%s\n", formatPairs(v.Params))
	}
	if len(v.Query) > 0 {
		q := make(map[string]string, len(v.Query))
		for k, vals := range v.Query {
			q[k] = strings.Join(vals, ",")
		}
		fmt.Fprintf(tw, "query:\t%s\n", formatPairs(q))
	}
	if v.Hash != "" {
		fmt.Fprintf(tw, "hash:\t%s\n", v.Hash)
	}
	if len(v.Matched) == 0 {
		fmt.Fprintf(tw, "matched:\t(none)\n")
	} else {
		fmt.Fprintf(tw, "matched:\t%s\n", strings.Join(v.Matched, " > "))
	}
	if len(v.Meta) > 0 {
		meta := make(map[string]string, len(v.Meta))
		for k, val := range v.Meta {
			meta[k] = fmt.Sprint(val)
		}
		fmt.Fprintf(tw, "meta:\t%s\n", formatPairs(meta))
	}
}

func formatPairs(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, " ")
}
