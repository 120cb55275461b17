// Package nocache keeps dynamic regions alive inside statically cached pages.
//
// While a page renders, every dynamic fragment is pushed onto the request's
// Session together with the context it needs. The session is written to a
// Store under a key derived from the page url. When the cached page is served
// later, the session is restored, each region is re-rendered as a Fragment and
// substituted into the placeholders left in the static html.
package nocache
