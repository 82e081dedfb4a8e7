// Package tcp implements the VirtualCircuit: the TCP-layer peer that
// multiplexes channels over one byte stream and drives the coupled
// circuit/channel state machines described by the codec in package ca.
package tcp

import (
	"errors"
	"time"

	"github.com/caproto/caproto-sub000/ca"
)

// Port is the default TCP port a Channel Access server listens on.
const Port = 5064

// defines the legal range of a circuit's priority field.
const (
	PriorityMin uint16 = 0
	PriorityMax uint16 = 99
)

// Config holds the caller-chosen parameters for one VirtualCircuit. Unlike
// the environment variables in EPICS_CA_*, these are never read from the
// process environment by this package; a caller wiring up a circuit from
// its environment must translate that into a Config itself.
type Config struct {
	// OurRole is CLIENT or SERVER for the local side of this circuit.
	OurRole ca.Role

	// Priority is this circuit's priority, 0-99, announced in the
	// VersionRequest.
	Priority uint16

	// MaxProtocolVersion is the highest version this side supports. Valid
	// range-checks it, but VirtualCircuit does not consult it: the
	// negotiated version is taken from the VersionResponse exchanged on the
	// circuit and is not capped by this field.
	MaxProtocolVersion uint16

	// EchoIdleTimeout is how long a caller-driven liveness monitor should
	// wait for traffic before issuing an EchoCommand. The circuit itself
	// does not own a clock; this is carried only for the convenience of a
	// caller building one.
	EchoIdleTimeout time.Duration
}

// Valid fills in defaults for zero-valued fields and rejects out-of-range
// ones.
func (sf *Config) Valid() error {
	if sf == nil {
		return errors.New("tcp: nil config")
	}
	if sf.Priority > PriorityMax {
		return errors.New("tcp: priority not in [0, 99]")
	}
	if sf.MaxProtocolVersion == 0 {
		sf.MaxProtocolVersion = 13
	} else if sf.MaxProtocolVersion < ca.MinProtocolVersion {
		return errors.New("tcp: max protocol version below the supported floor")
	}
	if sf.EchoIdleTimeout == 0 {
		sf.EchoIdleTimeout = 15 * time.Second
	}
	return nil
}

// DefaultConfig returns a Config for a CLIENT circuit at default priority
// and maximum supported protocol version.
func DefaultConfig() Config {
	return Config{
		OurRole:            ca.RoleClient,
		Priority:           0,
		MaxProtocolVersion: 13,
		EchoIdleTimeout:    15 * time.Second,
	}
}
