package udp

import "github.com/caproto/caproto-sub000/ca"

// validateRole checks that cmd is legal for a broadcaster of role to send
// or receive, per companion spec §4.2: a client broadcaster sends REQUEST
// variants and accepts RESPONSE variants of search/beacon; a server
// broadcaster is the inverse. RepeaterRegisterRequest/RepeaterConfirmResponse
// is a registration exchange between a client and the local repeater and
// follows the same request/response shape.
func validateRole(role ca.Role, cmd ca.Command, dir ca.Direction) error {
	if !cmd.ID().IsUDPLegal() {
		if dir == ca.DirRecv {
			return ca.NewRemoteProtocolError("%s is not a legal UDP command", cmd.ID())
		}
		return ca.NewLocalProtocolError("%s is not a legal UDP command", cmd.ID())
	}

	isRequestLike := func(c ca.Command) bool {
		switch c.(type) {
		case ca.VersionRequest, ca.SearchRequest, ca.RepeaterRegisterRequest:
			return true
		}
		return false
	}
	isResponseLike := func(c ca.Command) bool {
		switch c.(type) {
		case ca.VersionResponse, ca.SearchResponse, ca.NotFoundResponse, ca.RsrvIsUpResponse, ca.RepeaterConfirmResponse:
			return true
		}
		return false
	}
	// EchoCommand is symmetric and legal in either direction for either role.
	if _, ok := cmd.(ca.EchoCommand); ok {
		return nil
	}

	switch dir {
	case ca.DirSend:
		if role == ca.RoleClient && isRequestLike(cmd) {
			return nil
		}
		if role == ca.RoleServer && isResponseLike(cmd) {
			return nil
		}
	case ca.DirRecv:
		if role == ca.RoleClient && isResponseLike(cmd) {
			return nil
		}
		if role == ca.RoleServer && isRequestLike(cmd) {
			return nil
		}
	}
	if dir == ca.DirSend {
		return ca.NewLocalProtocolError("%s broadcaster cannot send %s", role, cmd.ID())
	}
	return ca.NewRemoteProtocolError("%s broadcaster received unexpected %s", role, cmd.ID())
}
