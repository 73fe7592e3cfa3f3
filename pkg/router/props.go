package router

// Props derives the properties handed to a view from the route that
// rendered it.
type Props interface {
	resolve(route *Route) map[string]any
}

type paramsProps struct{}

func (paramsProps) resolve(route *Route) map[string]any {
	out := make(map[string]any, len(route.params))
	for k, v := range route.params {
		out[k] = v
	}
	return out
}

// PropsFromParams passes the route params as props.
func PropsFromParams() Props { return paramsProps{} }

type staticProps map[string]any

func (p staticProps) resolve(*Route) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// StaticProps passes a fixed set of props.
func StaticProps(props map[string]any) Props { return staticProps(props) }

// PropsFunc derives props from the route.
type PropsFunc func(route *Route) map[string]any

func (f PropsFunc) resolve(route *Route) map[string]any { return f(route) }
