// Package domain holds the types shared by the nav and page services: users
// and their roles, preference scopes, pages, and the repository contracts the
// adapters implement.
package domain
