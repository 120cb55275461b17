// Package preferences stores control panel preferences as ordered YAML
// mappings addressed by dotted keys, and merges the user, role and default
// layers into the effective set a user sees.
package preferences
