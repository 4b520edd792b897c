package mqtt

import "errors"

// ErrResponseTimeout is returned by WaitForPatch when no Patch for the
// given request id arrives before the deadline.
var ErrResponseTimeout = errors.New("mqtt: timed out waiting for schedule patch")
