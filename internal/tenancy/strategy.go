package tenancy

// Source is a transport-neutral view of whatever an operation was started
// from: an HTTP request, a realtime connection or a queue message. Accessors
// return "" when the transport has no such value.
type Source interface {
	Claim(name string) string
	Header(name string) string
	RouteParam(name string) string
	Query(name string) string
	Item(key string) string
}

// Strategy extracts a tenant identifier from a Source. An empty result means
// "not found here", letting the next strategy in the chain try.
type Strategy interface {
	Name() string
	Identifier(src Source) string
}

// ClaimStrategy reads a verified token claim.
type ClaimStrategy struct {
	Claim string
}

func (s ClaimStrategy) Name() string                 { return "claim:" + s.Claim }
func (s ClaimStrategy) Identifier(src Source) string { return src.Claim(s.Claim) }

// HeaderStrategy reads a request header.
type HeaderStrategy struct {
	Header string
}

func (s HeaderStrategy) Name() string                 { return "header:" + s.Header }
func (s HeaderStrategy) Identifier(src Source) string { return src.Header(s.Header) }

// RouteStrategy reads a path parameter.
type RouteStrategy struct {
	Param string
}

func (s RouteStrategy) Name() string                 { return "route:" + s.Param }
func (s RouteStrategy) Identifier(src Source) string { return src.RouteParam(s.Param) }

// QueryStrategy reads a query string parameter.
type QueryStrategy struct {
	Key string
}

func (s QueryStrategy) Name() string                 { return "query:" + s.Key }
func (s QueryStrategy) Identifier(src Source) string { return src.Query(s.Key) }

// ItemStrategy reads a value previously stashed in connection-local or
// message-local state.
type ItemStrategy struct {
	Key string
}

func (s ItemStrategy) Name() string                 { return "item:" + s.Key }
func (s ItemStrategy) Identifier(src Source) string { return src.Item(s.Key) }

// Claims adapts verified token claims to a Source.
type Claims map[string]any

func (c Claims) Claim(name string) string {
	v, _ := c[name].(string)
	return v
}
func (Claims) Header(string) string     { return "" }
func (Claims) RouteParam(string) string { return "" }
func (Claims) Query(string) string      { return "" }
func (Claims) Item(string) string       { return "" }

// Items adapts a flat key/value bag (message attributes, stashed state) to a
// Source.
type Items map[string]string

func (Items) Claim(string) string      { return "" }
func (Items) Header(string) string     { return "" }
func (Items) RouteParam(string) string { return "" }
func (Items) Query(string) string      { return "" }
func (i Items) Item(key string) string { return i[key] }
