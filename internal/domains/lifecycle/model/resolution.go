package model

import (
	"fmt"
	"hotel/shared/failure"
)

// Resolution is the action a caller picks to free an occupied room.
type Resolution string

const (
	ResolutionCheckout Resolution = "checkout"
	ResolutionDelete   Resolution = "delete"
	ResolutionCancel   Resolution = "cancel"
)

func (r Resolution) Valid() bool {
	switch r {
	case ResolutionCheckout, ResolutionDelete, ResolutionCancel:
		return true
	default:
		return false
	}
}

// Archives reports whether the current booking ends up in the history archive.
// Delete and cancel both discard it.
func (r Resolution) Archives() bool {
	return r == ResolutionCheckout
}

// ParseResolution reads either the explicit resolution or the legacy force/checkout flags.
// A nil result means the caller did not ask to override an occupied room. discard is the
// variant the legacy flags map to when checkoutBooking is false.
func ParseResolution(explicit string, force, checkout *bool, discard Resolution) (*Resolution, error) {
	if explicit != "" {
		res := Resolution(explicit)
		if !res.Valid() {
			return nil, failure.BadRequestFromString(fmt.Sprintf("resolution must be one of %s %s %s", ResolutionCheckout, ResolutionDelete, ResolutionCancel))
		}

		return &res, nil
	}

	if force == nil || !*force {
		return nil, nil //nolint:nilnil
	}

	res := discard
	if checkout != nil && *checkout {
		res = ResolutionCheckout
	}

	return &res, nil
}
