package transfer

import (
	"regexp"

	"github.com/vk/lfdeploy/internal/fault"
)

// remotePattern accepts user@host:path. The path may be empty, which the
// copy tool reads as the remote user's home directory.
var remotePattern = regexp.MustCompile(`^[^@\s]+@[^@:\s]+:.*$`)

// Address is a validated user@host:path destination.
type Address string

// ParseAddress validates a remote destination.
func ParseAddress(s string) (Address, error) {
	if !remotePattern.MatchString(s) {
		return "", fault.New(fault.ErrInvalidRemoteAddress, "%q, expected user@host:path", s)
	}
	return Address(s), nil
}

func (a Address) String() string {
	return string(a)
}
