package udp

import (
	"encoding/binary"

	"github.com/caproto/caproto-sub000/ca"
	"github.com/caproto/caproto-sub000/clog"
	"github.com/caproto/caproto-sub000/metrics"
)

// Address is a UDP peer address as seen by the caller's transport. The
// Broadcaster never resolves or dials it; it is opaque bookkeeping handed
// back alongside parsed commands.
type Address struct {
	Host string
	Port uint16
}

// Broadcaster frames CA commands into UDP datagrams and demultiplexes
// incoming datagrams into ordered command sequences. See companion spec
// §4.2.
type Broadcaster struct {
	cfg Config

	searchIDAlloc *ca.IDAllocator
	pendingSearch map[uint32]string // search_id (== cid) -> channel name

	Log     clog.Clog
	Metrics *metrics.Collector
}

// NewBroadcaster builds a Broadcaster for the role and MTU in cfg. The
// search_id allocator is seeded randomly, per companion spec §9.
func NewBroadcaster(cfg Config) (*Broadcaster, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	return &Broadcaster{
		cfg:           cfg,
		searchIDAlloc: ca.NewIDAllocator(),
		pendingSearch: make(map[uint32]string),
	}, nil
}

// NewSearchID allocates a fresh search_id and records name as pending
// until a matching SearchResponse or NotFoundResponse is observed.
func (sf *Broadcaster) NewSearchID(name string) uint32 {
	id := sf.searchIDAlloc.Next()
	sf.pendingSearch[id] = name
	return id
}

// PendingSearchName reports the channel name associated with an
// outstanding search_id, if any.
func (sf *Broadcaster) PendingSearchName(searchID uint32) (string, bool) {
	name, ok := sf.pendingSearch[searchID]
	return name, ok
}

// resolveSearch removes a search_id from the pending table once its
// response (success or failure) has been observed.
func (sf *Broadcaster) resolveSearch(searchID uint32) {
	delete(sf.pendingSearch, searchID)
}

// datagramFrame is one command's pre-encoded bytes, tracked alongside
// whether it is a VersionRequest (for the "VersionRequest first" rule).
type datagramFrame struct {
	bytes      []byte
	isVersion  bool
	isSearch   bool
}

// EncodeDatagrams validates and serializes cmds, splitting into as many
// datagrams as needed to respect the configured MTU. When cmds includes a
// VersionRequest, every datagram that contains a SearchRequest begins with
// it, re-added on each split; see companion spec §4.2. SearchRequests
// passed without any VersionRequest are framed as given, with no
// VersionRequest added and no error returned.
func (sf *Broadcaster) EncodeDatagrams(cmds ...ca.Command) ([][]byte, error) {
	var frames []datagramFrame
	var versionFrame *datagramFrame

	for _, cmd := range cmds {
		if err := validateRole(sf.cfg.OurRole, cmd, ca.DirSend); err != nil {
			return nil, err
		}
		bufs, err := ca.Encode(cmd, ca.MinProtocolVersion)
		if err != nil {
			return nil, err
		}
		var flat []byte
		for _, b := range bufs {
			flat = append(flat, b...)
		}
		_, isVersion := cmd.(ca.VersionRequest)
		_, isSearch := cmd.(ca.SearchRequest)
		f := datagramFrame{bytes: flat, isVersion: isVersion, isSearch: isSearch}
		if isVersion && versionFrame == nil {
			versionFrame = &f
		}
		frames = append(frames, f)
	}

	var datagrams [][]byte
	var cur []byte
	flush := func() {
		if len(cur) == 0 {
			return
		}
		datagrams = append(datagrams, cur)
		if sf.Metrics != nil {
			sf.Metrics.ObserveDatagram("tx")
		}
		cur = nil
	}
	ensureVersionFirst := func() {
		if len(cur) == 0 && versionFrame != nil {
			cur = append(cur, versionFrame.bytes...)
		}
	}

	for _, f := range frames {
		if f.isSearch {
			ensureVersionFirst()
		}
		if len(cur) > 0 && len(cur)+len(f.bytes) > sf.cfg.MTU {
			flush()
			if f.isSearch {
				ensureVersionFirst()
			}
		}
		if len(cur)+len(f.bytes) > sf.cfg.MTU {
			return nil, ca.NewLocalProtocolError("a command of %d bytes (with any leading VersionRequest, %d) exceeds the MTU of %d", len(f.bytes), len(cur)+len(f.bytes), sf.cfg.MTU)
		}
		cur = append(cur, f.bytes...)
	}
	flush()
	return datagrams, nil
}

// DecodeDatagram parses every command packed into one incoming datagram,
// in order. The returned commands do not carry the sender address; from is
// used only in the debug log line.
func (sf *Broadcaster) DecodeDatagram(data []byte, from Address) ([]ca.Command, error) {
	var out []ca.Command
	peerRole := opposite(sf.cfg.OurRole)

	for len(data) > 0 {
		if len(data) < ca.HeaderSize {
			return nil, ca.NewRemoteProtocolError("trailing %d bytes too short for a header", len(data))
		}
		cmdID := ca.CommandID(binary.BigEndian.Uint16(data[0:2]))
		extendedAllowed := cmdID.AllowsExtendedHeader()
		h, hdrLen, err := ca.DecodeHeader(data, extendedAllowed)
		if err != nil {
			return nil, err
		}
		total := hdrLen + int(h.PayloadSize)
		if len(data) < total {
			return nil, ca.NewRemoteProtocolError("datagram truncated mid-command")
		}
		cmd, err := ca.DecodeCommand(h, data[hdrLen:total], peerRole)
		if err != nil {
			return nil, err
		}
		if err := validateRole(sf.cfg.OurRole, cmd, ca.DirRecv); err != nil {
			return nil, err
		}
		switch v := cmd.(type) {
		case ca.SearchResponse:
			sf.resolveSearch(v.CID)
		case ca.NotFoundResponse:
			sf.resolveSearch(v.CID)
		}
		out = append(out, cmd)
		data = data[total:]
	}
	if sf.Metrics != nil {
		sf.Metrics.ObserveDatagram("rx")
	}
	sf.Log.Debug("decoded %d commands from %s:%d", len(out), from.Host, from.Port)
	return out, nil
}

func opposite(r ca.Role) ca.Role {
	if r == ca.RoleClient {
		return ca.RoleServer
	}
	return ca.RoleClient
}
