// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package payload

import (
	"errors"
	"fmt"
)

// ErrUnknownEvent is returned for event names outside EventNames.
var ErrUnknownEvent = errors.New("unknown push event")

// DecodeError reports a push payload that could not be decoded into its
// variant. The message should be dropped; the channel stays usable.
type DecodeError struct {
	Event string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s payload: %v", e.Event, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
