package engine

import (
	"errors"

	"github.com/dshills/hexstorm/internal/engine/history"
	"github.com/dshills/hexstorm/internal/engine/overlay"
	"github.com/dshills/hexstorm/internal/engine/pagestore"
	"github.com/dshills/hexstorm/internal/engine/search"
)

// Errors returned by document operations.
var (
	// ErrReadOnly indicates a mutation was attempted on a read-only
	// document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrMutationInFlight indicates a mutation was attempted while
	// another mutation or flush had not completed.
	ErrMutationInFlight = errors.New("another mutation is in flight")

	// ErrClosed indicates the document has been closed.
	ErrClosed = errors.New("document is closed")

	// ErrNoPath indicates a flush was requested on a document that has
	// no backing path yet.
	ErrNoPath = errors.New("document has no backing path")
)

// Failure kinds surfaced from the layers below, re-exported so callers
// can match with errors.Is against one package.
var (
	ErrStorageUnavailable = pagestore.ErrStorageUnavailable
	ErrSourceChanged      = pagestore.ErrSourceChanged
	ErrRangeOutOfBounds   = overlay.ErrRangeOutOfBounds
	ErrInvalidPattern     = search.ErrInvalidPattern
	ErrNothingToUndo      = history.ErrNothingToUndo
	ErrNothingToRedo      = history.ErrNothingToRedo
)
