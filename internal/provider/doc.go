// Package provider is a small client for the Unsplash photo API.
//
// Responses are validated at the boundary: a search result that is missing an
// id or a regular rendition URL fails the whole call with ErrMalformedResponse
// instead of leaking empty strings into post front matter.
package provider
