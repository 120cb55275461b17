package nav

import (
	"net/url"
	"strings"
)

// URLs resolves item urls against the site root and the control panel's
// named routes.
type URLs struct {
	site   string
	cpRoot string
	routes map[string]string
}

// DefaultRoutes maps route names to paths below the control panel root.
var DefaultRoutes = map[string]string{
	"dashboard":          "dashboard",
	"collections.index":  "collections",
	"navigation.index":   "navigation",
	"taxonomies.index":   "taxonomies",
	"assets.index":       "assets",
	"globals.index":      "globals",
	"blueprints.index":   "fields/blueprints",
	"fieldsets.index":    "fields/fieldsets",
	"forms.index":        "forms",
	"updater":            "updater",
	"addons.index":       "addons",
	"utilities.index":    "utilities",
	"utilities.cache":    "utilities/cache",
	"graphql.index":      "graphql",
	"users.index":        "users",
	"user-groups.index":  "user-groups",
	"roles.index":        "roles",
	"preferences.index":  "preferences",
	"preferences.nav":    "preferences/nav",
	"preferences.nav.cp": "preferences/nav/default",
}

// NewURLs creates a resolver for the given site url (e.g.
// "http://localhost") and control panel route prefix (e.g. "cp"). Extra
// routes are merged over DefaultRoutes.
func NewURLs(site, cpRoute string, routes map[string]string) *URLs {
	merged := make(map[string]string, len(DefaultRoutes)+len(routes))
	for name, path := range DefaultRoutes {
		merged[name] = path
	}
	for name, path := range routes {
		merged[name] = path
	}
	site = strings.TrimRight(site, "/")
	return &URLs{
		site:   site,
		cpRoot: site + "/" + strings.Trim(cpRoute, "/"),
		routes: merged,
	}
}

// Site returns the site root url without a trailing slash.
func (u *URLs) Site() string {
	if u == nil {
		return ""
	}
	return u.site
}

// Resolve makes a root-relative url absolute. Absolute urls and anything else
// it cannot interpret are returned unchanged.
func (u *URLs) Resolve(raw string) string {
	if u == nil || raw == "" {
		return raw
	}
	if parsed, err := url.Parse(raw); err == nil && parsed.IsAbs() {
		return raw
	}
	if strings.HasPrefix(raw, "//") || !strings.HasPrefix(raw, "/") {
		return raw
	}
	return u.site + raw
}

// CP returns the absolute url of path below the control panel root.
func (u *URLs) CP(path string) string {
	if u == nil {
		return path
	}
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return u.cpRoot
	}
	return u.cpRoot + "/" + path
}

// Route resolves a named control panel route. Unknown names resolve to an
// empty url.
func (u *URLs) Route(name string) string {
	if u == nil {
		return ""
	}
	path, ok := u.routes[name]
	if !ok {
		return ""
	}
	return u.CP(path)
}
