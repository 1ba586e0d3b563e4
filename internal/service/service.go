// Package service implements the application operations behind the JSON API and the pages.
// Services enforce ownership rules and return coded errors from internal/errors.
package service

import (
	"errors"
	"log/slog"

	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/store"
	"github.com/simmerapp/simmer-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// notFoundAs maps a store not-found error onto a domain NotFound with msg.
// Other errors pass through unchanged.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg).WithCause(err)
	}
	return err
}

// orDiscard substitutes a discarding logger for nil.
func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// orNoop substitutes a no-op emitter for nil.
func orNoop(events store.EventEmitter) store.EventEmitter {
	if events == nil {
		return store.NewNoopEmitter()
	}
	return events
}
