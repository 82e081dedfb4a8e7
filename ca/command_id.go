package ca

// CommandID is the wire command_id field, u16 on the wire but small enough
// that every defined value fits in a byte.
//
// See companion spec §3 "Command". The numeric assignment below follows
// the conventional EPICS Channel Access wire numbering.
type CommandID uint16

// Defined command identifiers.
const (
	CMD_VERSION       CommandID = 0  // VersionRequest / VersionResponse
	CMD_EVENT_ADD     CommandID = 1  // EventAddRequest / EventAddResponse
	CMD_EVENT_CANCEL  CommandID = 2  // EventCancelRequest / EventCancelResponse
	CMD_READ          CommandID = 3  // ReadRequest / ReadResponse (deprecated since v13)
	CMD_WRITE         CommandID = 4  // WriteRequest
	CMD_SEARCH        CommandID = 6  // SearchRequest / SearchResponse
	CMD_ERROR         CommandID = 11 // ErrorResponse
	CMD_CLEAR_CHANNEL CommandID = 12 // ClearChannelRequest / ClearChannelResponse
	CMD_RSRV_IS_UP    CommandID = 13 // RsrvIsUpResponse (beacon)
	CMD_NOT_FOUND     CommandID = 14 // NotFoundResponse
	CMD_READ_NOTIFY   CommandID = 15 // ReadNotifyRequest / ReadNotifyResponse
	CMD_CREATE_CHAN   CommandID = 18 // CreateChanRequest / CreateChanResponse
	CMD_WRITE_NOTIFY  CommandID = 19 // WriteNotifyRequest / WriteNotifyResponse
	CMD_CLIENT_NAME   CommandID = 20 // ClientNameRequest
	CMD_HOST_NAME     CommandID = 21 // HostNameRequest
	CMD_ACCESS_RIGHTS CommandID = 22 // AccessRightsResponse
	CMD_CREATE_CH_FAIL CommandID = 26 // CreateChFailResponse
	CMD_SERVER_DISCONN CommandID = 27 // ServerDisconnResponse
	CMD_ECHO          CommandID = 23 // EchoRequest / EchoResponse
	CMD_REPEATER_CONFIRM  CommandID = 17 // RepeaterConfirmResponse
	CMD_REPEATER_REGISTER CommandID = 24 // RepeaterRegisterRequest
)

var commandIDNames = map[CommandID]string{
	CMD_VERSION:           "VERSION",
	CMD_EVENT_ADD:         "EVENT_ADD",
	CMD_EVENT_CANCEL:      "EVENT_CANCEL",
	CMD_READ:              "READ",
	CMD_WRITE:             "WRITE",
	CMD_SEARCH:            "SEARCH",
	CMD_ERROR:             "ERROR",
	CMD_CLEAR_CHANNEL:     "CLEAR_CHANNEL",
	CMD_RSRV_IS_UP:        "RSRV_IS_UP",
	CMD_NOT_FOUND:         "NOT_FOUND",
	CMD_READ_NOTIFY:       "READ_NOTIFY",
	CMD_CREATE_CHAN:       "CREATE_CHAN",
	CMD_WRITE_NOTIFY:      "WRITE_NOTIFY",
	CMD_CLIENT_NAME:       "CLIENT_NAME",
	CMD_HOST_NAME:         "HOST_NAME",
	CMD_ACCESS_RIGHTS:     "ACCESS_RIGHTS",
	CMD_CREATE_CH_FAIL:    "CREATE_CH_FAIL",
	CMD_SERVER_DISCONN:    "SERVER_DISCONN",
	CMD_ECHO:              "ECHO",
	CMD_REPEATER_CONFIRM:  "REPEATER_CONFIRM",
	CMD_REPEATER_REGISTER: "REPEATER_REGISTER",
}

// String returns a debug-friendly command name, e.g. "CMD<SEARCH>".
func (sf CommandID) String() string {
	if name, ok := commandIDNames[sf]; ok {
		return "CMD<" + name + ">"
	}
	return "CMD<unknown>"
}

// udpLegal is the set of command IDs that may appear on a UDP datagram.
// See companion spec §4.2.
var udpLegal = map[CommandID]bool{
	CMD_VERSION:           true,
	CMD_SEARCH:            true,
	CMD_NOT_FOUND:         true,
	CMD_ECHO:              true,
	CMD_RSRV_IS_UP:        true,
	CMD_REPEATER_REGISTER: true,
	CMD_REPEATER_CONFIRM:  true,
}

// IsUDPLegal reports whether a command of this ID may be framed into a
// UDP datagram by the Broadcaster.
func (sf CommandID) IsUDPLegal() bool {
	return udpLegal[sf]
}

// extendedCapable is the set of commands allowed to use the extended
// 24-byte header when their payload overflows 16 bits. See §4.1.
var extendedCapable = map[CommandID]bool{
	CMD_WRITE:        true,
	CMD_WRITE_NOTIFY: true,
	CMD_READ_NOTIFY:  true,
	CMD_EVENT_ADD:    true,
}

// AllowsExtendedHeader reports whether this command may legally use the
// extended header form, independent of the negotiated protocol version.
func (sf CommandID) AllowsExtendedHeader() bool {
	return extendedCapable[sf]
}
