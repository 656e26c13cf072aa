//go:build !linux

package netinfo

import "errors"

var errUnsupported = errors.New("netinfo: only supported on linux")

// PrimaryIPv4 is unsupported off-appliance.
func PrimaryIPv4() (string, error) {
	return "", errUnsupported
}

// DefaultLANCIDR is unsupported off-appliance.
func DefaultLANCIDR() (string, error) {
	return "", errUnsupported
}
