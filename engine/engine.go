// Package engine describes the external media engine that performs decoding, rendering and clock work.
//
// Nothing in this package plays media. It defines the contract an engine adapter
// must satisfy so the playback controller can subscribe to its signals.
package engine

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidLocator is returned when a source string cannot be resolved into a playable resource.
	ErrInvalidLocator = errors.New("invalid locator")

	// ErrEngineCreate is returned when the engine could not materialise a resource.
	ErrEngineCreate = errors.New("engine failed to create resource")

	// ErrNoActiveResource is returned by transport operations aimed at a handle that is not loaded.
	ErrNoActiveResource = errors.New("no active resource")

	// ErrClosed is returned after the engine has been shut down.
	ErrClosed = errors.New("engine closed")
)

// Handle is the opaque identity of one engine-side resource. The zero Handle is never valid.
type Handle uint64

// Valid reports whether h refers to a resource.
func (h Handle) Valid() bool {
	return h != 0
}

// Token identifies one active subscription.
type Token uint64

// Callback receives signals. Engines may invoke it from any goroutine.
type Callback func(Event)

// Engine is the platform media engine consumed by the playback controller.
type Engine interface {
	// CreateResource resolves a locator into a handle without loading it.
	CreateResource(ctx context.Context, locator string) (Handle, error)

	// Load makes h the engine's current item, replacing whatever was loaded.
	Load(h Handle) error

	// Subscribe registers cb for signal s on h. PeriodicTime must use ObservePeriodic.
	Subscribe(h Handle, s Signal, cb Callback) (Token, error)

	// ObservePeriodic delivers PeriodicTime events for h every interval.
	ObservePeriodic(h Handle, interval time.Duration, cb Callback) (Token, error)

	// Unsubscribe cancels a subscription. No new delivery for t starts after it returns.
	Unsubscribe(t Token) error

	Start(h Handle) error
	Pause(h Handle) error

	// Seek moves h to position. It returns once the seek is issued; done reports completion later.
	Seek(h Handle, position, toleranceBefore, toleranceAfter time.Duration, done func(finished bool)) error

	// Status reports the readiness of h.
	Status(h Handle) ItemStatus

	// Release forgets h. Releasing an unknown handle is not an error.
	Release(h Handle) error

	Close() error
}
