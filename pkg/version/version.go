// Package version provides obs-websocket version parsing, RPC version
// negotiation, and build information.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// RPCVersion is the obs-websocket RPC version implemented by this module.
const RPCVersion = 1

// SupportedServerMajor is the obs-websocket major version this module
// speaks.
const SupportedServerMajor = 5

// Build information, set at build time via ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

// String returns the build information in one line.
func String() string {
	return fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit)
}

// Negotiate returns the RPC version to request from a server that
// advertised serverRPC in its Hello. The lower of the two versions wins.
func Negotiate(serverRPC int) (int, error) {
	if serverRPC < 1 {
		return 0, fmt.Errorf("invalid server rpcVersion %d", serverRPC)
	}
	if serverRPC < RPCVersion {
		return serverRPC, nil
	}
	return RPCVersion, nil
}

// ServerVersion represents a parsed "major.minor.patch" obs-websocket
// version.
type ServerVersion struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// ParseServer parses a "major.minor.patch" version string. A missing
// patch component is accepted and treated as zero.
func ParseServer(s string) (ServerVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return ServerVersion{}, fmt.Errorf("invalid version %q: expected major.minor.patch", s)
	}

	var nums [3]uint16
	names := [3]string{"major", "minor", "patch"}
	for i, p := range parts {
		if p == "" {
			return ServerVersion{}, fmt.Errorf("invalid version %q: empty %s component", s, names[i])
		}
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return ServerVersion{}, fmt.Errorf("invalid version %q: bad %s component", s, names[i])
		}
		nums[i] = uint16(n)
	}

	return ServerVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the version as "major.minor.patch".
func (v ServerVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Supported returns true if this module can talk to a server of this
// version.
func (v ServerVersion) Supported() bool {
	return v.Major == SupportedServerMajor
}
