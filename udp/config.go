// Package udp implements the Broadcaster: the UDP-layer peer handling name
// search, beacons, version negotiation, and repeater registration. See
// companion spec §4.2.
package udp

import (
	"errors"

	"github.com/caproto/caproto-sub000/ca"
)

// SearchPort is the default UDP port used for name search.
const SearchPort = 5064

// RepeaterPort is the default UDP port the CA Repeater listens on.
const RepeaterPort = 5065

// DefaultMTU is a conservative datagram size bound: 1500-byte Ethernet
// frame minus typical IPv4+UDP headers. Callers on networks with a lower
// path MTU should set Config.MTU explicitly.
const DefaultMTU = 1472

// Config holds the caller-chosen parameters for one Broadcaster.
type Config struct {
	// OurRole is CLIENT or SERVER for the local side of this broadcaster.
	OurRole ca.Role

	// MTU bounds the total size of one outgoing datagram, header bytes
	// included. Encoding splits across multiple datagrams rather than
	// exceed it.
	MTU int
}

// Valid fills in defaults for zero-valued fields.
func (sf *Config) Valid() error {
	if sf == nil {
		return errors.New("udp: nil config")
	}
	if sf.MTU <= 0 {
		sf.MTU = DefaultMTU
	}
	return nil
}

// DefaultConfig returns a Config for a CLIENT broadcaster at the
// conservative default MTU.
func DefaultConfig() Config {
	return Config{OurRole: ca.RoleClient, MTU: DefaultMTU}
}
