// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrOfferExists signals that offer creation raced with
// another generation request for the same booking, while ErrConflict
// signals that a transition was attempted from a terminal state.
package repository

import "errors"

// ErrConflict is returned when a state transition cannot be performed
// because the row is already in a terminal state, such as expiring an
// offer that was already accepted. Handlers should translate this into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrOfferExists is returned when an offer insert violates the unique
// booking constraint: an offer already exists for that booking. It is
// surfaced distinctly from generic write failures because two
// concurrent generation requests for one booking are an expected race.
var ErrOfferExists = errors.New("offer already exists for booking")

// ErrOfferAccepted is returned by accept when the offer was already
// claimed. It is deliberately distinct from ErrOfferNotFound so that a
// losing concurrent accept can be reported as "already claimed" rather
// than a missing resource.
var ErrOfferAccepted = errors.New("offer already accepted")

// ErrOfferExpired is returned by accept when the offer's wall-clock
// deadline has passed or the row was explicitly expired.
var ErrOfferExpired = errors.New("offer expired")

// ErrOptionNotFound is returned when the targeted property is not part
// of an offer's ranked option list.
var ErrOptionNotFound = errors.New("option not found in offer")
