package nav

// core registers the built-in control panel sections. Section order here is
// the default order.
func (r *Registry) core(n *Navigation) {
	u := n.urls

	n.TopLevel("Dashboard").
		WithURL(u.Route("dashboard")).
		WithIcon("dashboard")

	n.Content("Collections").
		WithURL(u.Route("collections.index")).
		WithIcon("content-writing").
		WithLazyChildren(r.collectionItems)
	n.Content("Navigation").
		WithURL(u.Route("navigation.index")).
		WithIcon("hierarchy-files")
	n.Content("Taxonomies").
		WithURL(u.Route("taxonomies.index")).
		WithIcon("tags")
	n.Content("Assets").
		WithURL(u.Route("assets.index")).
		WithIcon("assets")
	n.Content("Globals").
		WithURL(u.Route("globals.index")).
		WithIcon("earth")

	n.Fields("Blueprints").
		WithURL(u.Route("blueprints.index")).
		WithIcon("blueprint")
	n.Fields("Fieldsets").
		WithURL(u.Route("fieldsets.index")).
		WithIcon("fieldsets")

	n.Tools("Forms").
		WithURL(u.Route("forms.index")).
		WithIcon("drawer-file")
	n.Tools("Updates").
		WithURL(u.Route("updater")).
		WithIcon("loading-bar")
	n.Tools("Addons").
		WithURL(u.Route("addons.index")).
		WithIcon("addons")
	n.Tools("Utilities").
		WithURL(u.Route("utilities.index")).
		WithIcon("settings-slider").
		WithLazyChildren(func() []*Item {
			return []*Item{
				Link("Cache", u.Route("utilities.cache")),
				Link("Email", u.CP("utilities/email")),
				Link("Licensing", u.CP("utilities/licensing")),
				Link("Search", u.CP("utilities/search")),
			}
		})
	n.Tools("GraphQL").
		WithURL(u.Route("graphql.index")).
		WithIcon("array")

	n.Users("Users").
		WithURL(u.Route("users.index")).
		WithIcon("users-box")
	n.Users("Groups").
		WithURL(u.Route("user-groups.index")).
		WithIcon("users-multiple")
	n.Users("Permissions").
		WithURL(u.Route("roles.index")).
		WithIcon("shield-key")

	n.Preferences("General").
		WithURL(u.Route("preferences.index")).
		WithIcon("hammer-wrench")
	n.Preferences("CP Nav").
		WithURL(u.Route("preferences.nav")).
		WithIcon("hierarchy")
}
