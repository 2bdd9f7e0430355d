// Package nav maps console paths to pages and applies the login guard.
package nav

import (
	"net/url"
	"strings"
)

// Route identifies a page.
type Route int

const (
	RouteNotFound Route = iota
	RouteLogin
	RouteDashboard
	RouteProducts
	RouteProductNew
	RouteProductEdit
)

// Canonical paths.
const (
	PathRoot         = "/"
	PathLogin        = "/login"
	PathDashboard    = "/dashboard"
	PathProducts     = "/products"
	PathProductNew   = "/products/new"
	pathEditPrefix   = "/products/edit/"
	legacyEditSuffix = "/edit"
)

func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteDashboard:
		return "dashboard"
	case RouteProducts:
		return "products"
	case RouteProductNew:
		return "product-new"
	case RouteProductEdit:
		return "product-edit"
	default:
		return "not-found"
	}
}

// Protected reports whether the route needs a session token.
func (r Route) Protected() bool {
	switch r {
	case RouteDashboard, RouteProducts, RouteProductNew, RouteProductEdit:
		return true
	default:
		return false
	}
}

// Destination is a parsed path.
type Destination struct {
	Route Route
	Path  string
	ID    string // product id for RouteProductEdit
}

// EditPath returns the canonical edit path for id.
func EditPath(id string) string {
	return pathEditPrefix + url.PathEscape(id)
}

// Parse maps path to a destination without applying the guard.
// "/" resolves to the dashboard; "/products/{id}/edit" is accepted as an
// alias of "/products/edit/{id}".
func Parse(path string) Destination {
	p := "/" + strings.Trim(strings.TrimSpace(path), "/")

	switch p {
	case PathRoot, PathDashboard:
		return Destination{Route: RouteDashboard, Path: PathDashboard}
	case PathLogin:
		return Destination{Route: RouteLogin, Path: PathLogin}
	case PathProducts:
		return Destination{Route: RouteProducts, Path: PathProducts}
	case PathProductNew:
		return Destination{Route: RouteProductNew, Path: PathProductNew}
	}

	if rest, ok := strings.CutPrefix(p, pathEditPrefix); ok {
		if id, ok := singleSegment(rest); ok {
			return Destination{Route: RouteProductEdit, Path: EditPath(id), ID: id}
		}
	}
	if rest, ok := strings.CutPrefix(p, PathProducts+"/"); ok {
		if seg, ok := strings.CutSuffix(rest, legacyEditSuffix); ok {
			if id, ok := singleSegment(seg); ok {
				return Destination{Route: RouteProductEdit, Path: EditPath(id), ID: id}
			}
		}
	}
	return Destination{Route: RouteNotFound, Path: p}
}

func singleSegment(s string) (string, bool) {
	if s == "" || strings.Contains(s, "/") {
		return "", false
	}
	id, err := url.PathUnescape(s)
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Resolve parses path and applies the guard: without a token every path
// other than /login goes to /login. The second result reports a redirect.
func Resolve(path string, authenticated bool) (Destination, bool) {
	d := Parse(path)
	if !authenticated && d.Route != RouteLogin {
		return Destination{Route: RouteLogin, Path: PathLogin}, true
	}
	return d, false
}
