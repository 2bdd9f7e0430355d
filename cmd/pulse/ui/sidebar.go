package ui

import (
	"strings"

	"pulseadmin/internal/nav"
)

// NavEntry is one sidebar link.
type NavEntry struct {
	Label string
	Key   string
	Path  string // empty for Logout
	Route nav.Route
}

// NavEntries is the sidebar in display order.
var NavEntries = []NavEntry{
	{Label: "Dashboard", Key: "alt+1", Path: nav.PathDashboard, Route: nav.RouteDashboard},
	{Label: "Products", Key: "alt+2", Path: nav.PathProducts, Route: nav.RouteProducts},
	{Label: "Add Product", Key: "alt+3", Path: nav.PathProductNew, Route: nav.RouteProductNew},
	{Label: "Logout", Key: "alt+4"},
}

// EntryForKey returns the sidebar entry bound to key.
func EntryForKey(key string) (NavEntry, bool) {
	for _, e := range NavEntries {
		if e.Key == key {
			return e, true
		}
	}
	return NavEntry{}, false
}

// RenderSidebar draws the navigation column with the active route highlighted.
// The edit page highlights Products.
func RenderSidebar(s Styles, active nav.Route, user string) string {
	if active == nav.RouteProductEdit {
		active = nav.RouteProducts
	}

	var sb strings.Builder
	sb.WriteString(Logo(s))
	sb.WriteString("\n")
	for _, e := range NavEntries {
		label := e.Label
		if e.Path != "" && e.Route == active {
			sb.WriteString(s.NavActive.Render(label))
		} else {
			sb.WriteString(s.NavItem.Render(label))
		}
		sb.WriteString(" " + s.Muted.Render(strings.TrimPrefix(e.Key, "alt+")))
		sb.WriteString("\n")
	}
	if user != "" {
		sb.WriteString("\n")
		sb.WriteString(s.Muted.Render(user))
	}
	return sb.String()
}
