// Package netinfo discovers host addressing used for the dashboard URL
// and the default LAN subnet advertisement.
package netinfo

import "errors"

// ErrNoAddress is returned when no suitable address exists on the host.
var ErrNoAddress = errors.New("netinfo: no global IPv4 address found")
