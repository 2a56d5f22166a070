package deeplink

import (
	"net/url"
	"strconv"
	"strings"
)

// Screen keys the navigation layer understands.
const (
	ScreenTracking = "order-tracking"
	ScreenCheckout = "checkout"
)

// Navigation is the reset directive produced from an inbound link: which
// screen to land on and the order context the query parameters encoded.
type Navigation struct {
	Screen  string            `json:"screen"`
	Route   string            `json:"route"`
	OrderID int64             `json:"order_id,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
}

// routes maps the hosted-payment return keys onto screens. Success and
// pending both land on tracking; failure returns to checkout with the
// draft preserved.
var routes = map[string]string{
	"payment-success": ScreenTracking,
	"payment-pending": ScreenTracking,
	"payment-failure": ScreenCheckout,
}

// Resolve parses an external redirect URL. Unrecognized route keys
// report ok=false and must cause no navigation change.
func Resolve(raw string) (Navigation, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return Navigation{}, false
	}

	key := routeKey(u)
	screen, ok := routes[key]
	if !ok {
		return Navigation{}, false
	}

	nav := Navigation{Screen: screen, Route: key, Params: map[string]string{}}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			nav.Params[k] = vs[0]
		}
	}
	if id, err := strconv.ParseInt(nav.Params["orderId"], 10, 64); err == nil {
		nav.OrderID = id
	}
	return nav, true
}

// routeKey is the last path segment; deep links arrive both as
// app-scheme URLs (cocina://payment-success) and https callbacks
// (/return/payment-success).
func routeKey(u *url.URL) string {
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return u.Host
	}
	segs := strings.Split(p, "/")
	return segs[len(segs)-1]
}
