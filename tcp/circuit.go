package tcp

import (
	"encoding/binary"

	"github.com/caproto/caproto-sub000/ca"
	"github.com/caproto/caproto-sub000/clog"
	"github.com/caproto/caproto-sub000/metrics"
)

// ioidKind distinguishes the two operations that own an ioid.
type ioidKind int

const (
	ioidRead ioidKind = iota
	ioidWrite
)

type ioidEntry struct {
	sid  uint32
	kind ioidKind
}

type subscriptionEntry struct {
	sid        uint32
	cancelling bool
}

// VirtualCircuit owns one TCP stream's worth of protocol state: the receive
// buffer, the channel table, in-flight ioid/subscription bookkeeping, id
// allocators, and the paired circuit state machines. See companion spec
// §3 "Virtual circuit" and §4.5.
type VirtualCircuit struct {
	cfg     Config
	ourRole ca.Role
	version uint16 // negotiated; 0 until the VersionResponse is observed

	recvBuf []byte

	channelsByCID map[uint32]*Channel
	channelsBySID map[uint32]*Channel

	ioids         map[uint32]ioidEntry
	subscriptions map[uint32]subscriptionEntry

	cidAlloc *ca.IDAllocator
	ioidAlloc *ca.IDAllocator
	subAlloc  *ca.IDAllocator

	clientCircuitState CircuitState
	serverCircuitState CircuitState

	Log     clog.Clog
	Metrics *metrics.Collector
}

// NewVirtualCircuit builds a circuit for the role and priority in cfg.
// Identifier allocators are seeded randomly, per companion spec §9.
func NewVirtualCircuit(cfg Config) (*VirtualCircuit, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	return &VirtualCircuit{
		cfg:                cfg,
		ourRole:            cfg.OurRole,
		channelsByCID:      make(map[uint32]*Channel),
		channelsBySID:      make(map[uint32]*Channel),
		ioids:              make(map[uint32]ioidEntry),
		subscriptions:      make(map[uint32]subscriptionEntry),
		cidAlloc:           ca.NewIDAllocator(),
		ioidAlloc:          ca.NewIDAllocator(),
		subAlloc:           ca.NewIDAllocator(),
		clientCircuitState: initialCircuitState(ca.RoleClient),
		serverCircuitState: initialCircuitState(ca.RoleServer),
	}, nil
}

// NewChannelID allocates a fresh cid, unique within this circuit's lifetime.
func (sf *VirtualCircuit) NewChannelID() uint32 { return sf.cidAlloc.Next() }

// NewIOID allocates a fresh ioid.
func (sf *VirtualCircuit) NewIOID() uint32 { return sf.ioidAlloc.Next() }

// NewSubscriptionID allocates a fresh subscriptionid.
func (sf *VirtualCircuit) NewSubscriptionID() uint32 { return sf.subAlloc.Next() }

// ProtocolVersion returns the negotiated version, or 0 before negotiation
// completes.
func (sf *VirtualCircuit) ProtocolVersion() uint16 { return sf.version }

// AddChannel registers a client-created channel so the circuit can route
// subsequent commands addressed to its cid/sid.
func (sf *VirtualCircuit) AddChannel(ch *Channel) {
	sf.channelsByCID[ch.CID] = ch
}

// ChannelByCID looks up a channel by its client-assigned id.
func (sf *VirtualCircuit) ChannelByCID(cid uint32) (*Channel, bool) {
	ch, ok := sf.channelsByCID[cid]
	return ch, ok
}

// ChannelBySID looks up a channel by its server-assigned id.
func (sf *VirtualCircuit) ChannelBySID(sid uint32) (*Channel, bool) {
	ch, ok := sf.channelsBySID[sid]
	return ch, ok
}

func opposite(r ca.Role) ca.Role {
	if r == ca.RoleClient {
		return ca.RoleServer
	}
	return ca.RoleClient
}

// Send validates and encodes one or more outgoing commands as a single
// atomic batch: if any command is illegal in the circuit's current state,
// no state is changed and the first offending error is returned. On
// success, every command's buffers are concatenated in order. See
// companion spec §4.5.
func (sf *VirtualCircuit) Send(cmds ...ca.Command) (ca.Buffers, error) {
	type undoStep struct{ fn func() }
	var undos []undoStep
	rollback := func() {
		for i := len(undos) - 1; i >= 0; i-- {
			undos[i].fn()
		}
	}

	var out ca.Buffers
	for _, cmd := range cmds {
		undo, err := sf.applySend(cmd)
		if err != nil {
			rollback()
			return nil, err
		}
		undos = append(undos, undoStep{undo})

		bufs, err := ca.Encode(cmd, sf.version)
		if err != nil {
			rollback()
			return nil, err
		}
		out = append(out, bufs...)
		if sf.Metrics != nil {
			sf.Metrics.ObserveSent(cmd.ID())
		}
		sf.Log.Debug("send %s", cmd.ID())
	}
	return out, nil
}

func noop() {}

// applySend advances whatever state machine or table owns cmd and returns
// a function that undoes exactly that mutation.
func (sf *VirtualCircuit) applySend(cmd ca.Command) (func(), error) {
	switch v := cmd.(type) {
	case ca.VersionRequest:
		old := sf.clientCircuitState
		next, err := circuitStep(ca.RoleClient, old, ca.CMD_VERSION, ca.DirSend, 0)
		if err != nil {
			return noop, err
		}
		sf.clientCircuitState = next
		return func() { sf.clientCircuitState = old }, nil

	case ca.VersionResponse:
		old := sf.serverCircuitState
		oldVersion := sf.version
		next, err := circuitStep(ca.RoleServer, old, ca.CMD_VERSION, ca.DirSend, 0)
		if err != nil {
			return noop, err
		}
		sf.serverCircuitState = next
		if sf.version == 0 {
			sf.version = v.Version
		}
		return func() { sf.serverCircuitState = old; sf.version = oldVersion }, nil

	case ca.EchoCommand:
		state := sf.circuitStateForRole(sf.ourRole)
		if state != CircConnected {
			return noop, ca.NewLocalProtocolError("echo requires a connected circuit")
		}
		return noop, nil

	case ca.CreateChanRequest:
		ch, ok := sf.channelsByCID[v.CID]
		if !ok {
			return noop, ca.NewLocalProtocolError("send CreateChanRequest: unknown cid %d", v.CID)
		}
		return sf.stepChannel(ch, ca.CMD_CREATE_CHAN, ca.DirSend)

	case ca.CreateChanResponse:
		ch, ok := sf.channelsByCID[v.CID]
		if !ok {
			return noop, ca.NewLocalProtocolError("send CreateChanResponse: unknown cid %d", v.CID)
		}
		undo, err := sf.stepChannel(ch, ca.CMD_CREATE_CHAN, ca.DirSend)
		if err != nil {
			return noop, err
		}
		ch.ApplyCreateChanResponse(v)
		sf.channelsBySID[v.SID] = ch
		return func() {
			undo()
			delete(sf.channelsBySID, v.SID)
			ch.hasSID = false
		}, nil

	case ca.CreateChFailResponse:
		ch, ok := sf.channelsByCID[v.CID]
		if !ok {
			return noop, ca.NewLocalProtocolError("send CreateChFailResponse: unknown cid %d", v.CID)
		}
		return sf.stepChannel(ch, ca.CMD_CREATE_CH_FAIL, ca.DirSend)

	case ca.ClearChannelRequest:
		ch, err := sf.requireChannel(v.CID, v.SID)
		if err != nil {
			return noop, err
		}
		return sf.stepChannel(ch, ca.CMD_CLEAR_CHANNEL, ca.DirSend)

	case ca.ClearChannelResponse:
		ch, err := sf.requireChannel(v.CID, v.SID)
		if err != nil {
			return noop, err
		}
		return sf.stepChannel(ch, ca.CMD_CLEAR_CHANNEL, ca.DirSend)

	case ca.ServerDisconnResponse:
		ch, ok := sf.channelsByCID[v.CID]
		if !ok {
			return noop, ca.NewLocalProtocolError("send ServerDisconnResponse: unknown cid %d", v.CID)
		}
		return sf.stepChannel(ch, ca.CMD_SERVER_DISCONN, ca.DirSend)

	case ca.ReadNotifyRequest:
		ch, ok := sf.channelsBySID[v.SID]
		if !ok || !ch.HasSID() {
			return noop, ca.NewLocalProtocolError("send ReadNotifyRequest: sid %d not connected", v.SID)
		}
		if _, exists := sf.ioids[v.IOID]; exists {
			return noop, ca.NewLocalProtocolError("ioid %d already in flight", v.IOID)
		}
		sf.ioids[v.IOID] = ioidEntry{sid: v.SID, kind: ioidRead}
		return func() { delete(sf.ioids, v.IOID) }, nil

	case ca.WriteNotifyRequest:
		ch, ok := sf.channelsBySID[v.SID]
		if !ok || !ch.HasSID() {
			return noop, ca.NewLocalProtocolError("send WriteNotifyRequest: sid %d not connected", v.SID)
		}
		if _, exists := sf.ioids[v.IOID]; exists {
			return noop, ca.NewLocalProtocolError("ioid %d already in flight", v.IOID)
		}
		sf.ioids[v.IOID] = ioidEntry{sid: v.SID, kind: ioidWrite}
		return func() { delete(sf.ioids, v.IOID) }, nil

	case ca.EventAddRequest:
		if ch, ok := sf.channelsBySID[v.SID]; !ok || !ch.HasSID() {
			return noop, ca.NewLocalProtocolError("send EventAddRequest: sid %d not connected", v.SID)
		}
		if _, exists := sf.subscriptions[v.SubscriptionID]; exists {
			return noop, ca.NewLocalProtocolError("subscriptionid %d already active", v.SubscriptionID)
		}
		sf.subscriptions[v.SubscriptionID] = subscriptionEntry{sid: v.SID}
		return func() { delete(sf.subscriptions, v.SubscriptionID) }, nil

	case ca.EventCancelRequest:
		entry, ok := sf.subscriptions[v.SubscriptionID]
		if !ok {
			return noop, ca.NewLocalProtocolError("send EventCancelRequest: unknown subscriptionid %d", v.SubscriptionID)
		}
		sf.subscriptions[v.SubscriptionID] = subscriptionEntry{sid: entry.sid, cancelling: true}
		return func() { sf.subscriptions[v.SubscriptionID] = entry }, nil

	default:
		return noop, nil
	}
}

func (sf *VirtualCircuit) circuitStateForRole(role ca.Role) CircuitState {
	if role == ca.RoleServer {
		return sf.serverCircuitState
	}
	return sf.clientCircuitState
}

func (sf *VirtualCircuit) requireChannel(cid, sid uint32) (*Channel, error) {
	if ch, ok := sf.channelsBySID[sid]; ok {
		return ch, nil
	}
	if ch, ok := sf.channelsByCID[cid]; ok {
		return ch, nil
	}
	return nil, ca.NewLocalProtocolError("no channel for cid=%d sid=%d", cid, sid)
}

// stepChannel advances both of a channel's role machines and returns an
// undo closure restoring both prior states.
func (sf *VirtualCircuit) stepChannel(ch *Channel, cmdID ca.CommandID, dir ca.Direction) (func(), error) {
	oldClient, oldServer := ch.clientState, ch.serverState
	err := ch.step(sf.ourRole, cmdID, dir)
	if err != nil {
		ch.clientState, ch.serverState = oldClient, oldServer
		return noop, err
	}
	return func() { ch.clientState, ch.serverState = oldClient, oldServer }, nil
}

// forceChannelsClosed walks every channel this circuit owns and forces both
// of its role machines to CLOSED. See companion spec §4.4: "On
// DISCONNECTED, all owned channels are forced to CLOSED."
func (sf *VirtualCircuit) forceChannelsClosed() {
	for _, ch := range sf.channelsByCID {
		ch.clientState = ChanClosed
		ch.serverState = ChanClosed
	}
	for _, ch := range sf.channelsBySID {
		ch.clientState = ChanClosed
		ch.serverState = ChanClosed
	}
}

// Recv appends newly-arrived bytes to the circuit's receive buffer. It
// never parses; call NextCommand to drain parsed commands. See companion
// spec §4.5.
func (sf *VirtualCircuit) Recv(b []byte) {
	sf.recvBuf = append(sf.recvBuf, b...)
}

// NextCommand parses at most one command from the front of the receive
// buffer. It returns ca.ErrNeedData if a full command is not yet
// available; the buffer is left untouched in that case. See companion
// spec §4.5.
func (sf *VirtualCircuit) NextCommand() (ca.Command, error) {
	if len(sf.recvBuf) < ca.HeaderSize {
		if sf.Metrics != nil {
			sf.Metrics.ObserveNeedData()
		}
		return nil, ca.ErrNeedData
	}
	cmdID := ca.CommandID(binary.BigEndian.Uint16(sf.recvBuf[0:2]))
	extendedAllowed := cmdID.AllowsExtendedHeader() && sf.version >= ca.ExtendedHeaderMinVersion

	h, hdrLen, err := ca.DecodeHeader(sf.recvBuf, extendedAllowed)
	if err == ca.ErrNeedData {
		if sf.Metrics != nil {
			sf.Metrics.ObserveNeedData()
		}
		return nil, ca.ErrNeedData
	}
	if err != nil {
		return nil, err
	}

	total := hdrLen + int(h.PayloadSize)
	if len(sf.recvBuf) < total {
		if sf.Metrics != nil {
			sf.Metrics.ObserveNeedData()
		}
		return nil, ca.ErrNeedData
	}
	payload := sf.recvBuf[hdrLen:total]

	peerRole := opposite(sf.ourRole)
	cmd, err := ca.DecodeCommand(h, payload, peerRole)
	if err != nil {
		return nil, err
	}

	if err := sf.applyRecv(cmd); err != nil {
		return nil, err
	}

	sf.recvBuf = sf.recvBuf[total:]
	if sf.Metrics != nil {
		sf.Metrics.ObserveReceived(cmd.ID())
	}
	sf.Log.Debug("recv %s", cmd.ID())
	return cmd, nil
}

// applyRecv advances whatever state machine or table owns cmd, mirroring
// applySend's dispatch but for the receive direction. A rejected channel or
// circuit transition leaves that machine in its prior state, except that a
// VersionResponse below the protocol floor moves the circuit to
// DISCONNECTED and forces its channels to CLOSED. Mutations made before the
// failing step of one command are not rolled back.
func (sf *VirtualCircuit) applyRecv(cmd ca.Command) error {
	switch v := cmd.(type) {
	case ca.VersionRequest:
		next, err := circuitStep(ca.RoleServer, sf.serverCircuitState, ca.CMD_VERSION, ca.DirRecv, v.Version)
		sf.serverCircuitState = next
		return err

	case ca.VersionResponse:
		if sf.version == 0 || v.Version < sf.version {
			sf.version = v.Version
		}
		next, err := circuitStep(ca.RoleClient, sf.clientCircuitState, ca.CMD_VERSION, ca.DirRecv, v.Version)
		sf.clientCircuitState = next
		if next == CircDisconnected {
			sf.forceChannelsClosed()
		}
		if err != nil {
			return err
		}
		if sf.version == 0 {
			sf.version = v.Version
		}
		return nil

	case ca.EchoCommand:
		if sf.circuitStateForRole(opposite(sf.ourRole)) != CircConnected {
			return ca.NewRemoteProtocolError("echo received on a circuit that is not connected")
		}
		return nil

	case ca.CreateChanRequest:
		ch, ok := sf.channelsByCID[v.CID]
		if !ok {
			ch = NewChannel(v.Name, v.CID)
			sf.channelsByCID[v.CID] = ch
		}
		_, err := sf.stepChannel(ch, ca.CMD_CREATE_CHAN, ca.DirRecv)
		return err

	case ca.CreateChanResponse:
		ch, ok := sf.channelsByCID[v.CID]
		if !ok {
			return ca.NewRemoteProtocolError("CreateChanResponse for unknown cid %d", v.CID)
		}
		if _, err := sf.stepChannel(ch, ca.CMD_CREATE_CHAN, ca.DirRecv); err != nil {
			return err
		}
		ch.ApplyCreateChanResponse(v)
		sf.channelsBySID[v.SID] = ch
		return nil

	case ca.CreateChFailResponse:
		ch, ok := sf.channelsByCID[v.CID]
		if !ok {
			return ca.NewRemoteProtocolError("CreateChFailResponse for unknown cid %d", v.CID)
		}
		_, err := sf.stepChannel(ch, ca.CMD_CREATE_CH_FAIL, ca.DirRecv)
		return err

	case ca.ClearChannelRequest:
		ch, err := sf.requireChannel(v.CID, v.SID)
		if err != nil {
			return ca.NewRemoteProtocolError("%s", err.Error())
		}
		_, err = sf.stepChannel(ch, ca.CMD_CLEAR_CHANNEL, ca.DirRecv)
		return err

	case ca.ClearChannelResponse:
		ch, err := sf.requireChannel(v.CID, v.SID)
		if err != nil {
			return ca.NewRemoteProtocolError("%s", err.Error())
		}
		_, err = sf.stepChannel(ch, ca.CMD_CLEAR_CHANNEL, ca.DirRecv)
		return err

	case ca.ServerDisconnResponse:
		ch, ok := sf.channelsByCID[v.CID]
		if !ok {
			return ca.NewRemoteProtocolError("ServerDisconnResponse for unknown cid %d", v.CID)
		}
		_, err := sf.stepChannel(ch, ca.CMD_SERVER_DISCONN, ca.DirRecv)
		return err

	case ca.AccessRightsResponse:
		ch, ok := sf.channelsByCID[v.CID]
		if !ok {
			return ca.NewRemoteProtocolError("AccessRightsResponse for unknown cid %d", v.CID)
		}
		ch.ApplyAccessRights(v)
		return nil

	case ca.ReadNotifyResponse:
		entry, ok := sf.ioids[v.IOID]
		if !ok || entry.kind != ioidRead {
			return ca.NewRemoteProtocolError("ReadNotifyResponse for unknown ioid %d", v.IOID)
		}
		delete(sf.ioids, v.IOID)
		return nil

	case ca.WriteNotifyResponse:
		entry, ok := sf.ioids[v.IOID]
		if !ok || entry.kind != ioidWrite {
			return ca.NewRemoteProtocolError("WriteNotifyResponse for unknown ioid %d", v.IOID)
		}
		delete(sf.ioids, v.IOID)
		return nil

	case ca.EventAddResponse:
		entry, ok := sf.subscriptions[v.SubscriptionID]
		if !ok {
			return ca.NewRemoteProtocolError("EventAddResponse for unknown subscriptionid %d", v.SubscriptionID)
		}
		if entry.cancelling && v.Data.Count == 0 {
			delete(sf.subscriptions, v.SubscriptionID)
		}
		return nil

	case ca.ErrorResponse:
		if ch, ok := sf.channelsByCID[v.CID]; ok {
			ch.clientState = ChanFailed
			ch.serverState = ChanFailed
		}
		return nil

	default:
		return nil
	}
}
