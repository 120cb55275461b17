// Package app wires preferences, navigation and nocache sessions into the
// two use-case services the HTTP layer calls: NavService and PageService.
package app
