// Package session persists the engine's primitive getters between
// runs: cursor offset, scroll position, and bookmarks per file.
//
// The engine itself has no opinion on the encoding; this package is
// the external serializer, writing one small JSON file per document
// under the user cache directory.
package session
