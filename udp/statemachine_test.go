package udp

import (
	"testing"

	"github.com/caproto/caproto-sub000/ca"
	"github.com/stretchr/testify/require"
)

func TestValidateRoleClientSend(t *testing.T) {
	require.NoError(t, validateRole(ca.RoleClient, ca.SearchRequest{}, ca.DirSend))
	require.Error(t, validateRole(ca.RoleClient, ca.SearchResponse{}, ca.DirSend))
}

func TestValidateRoleServerSend(t *testing.T) {
	require.NoError(t, validateRole(ca.RoleServer, ca.SearchResponse{}, ca.DirSend))
	require.Error(t, validateRole(ca.RoleServer, ca.SearchRequest{}, ca.DirSend))
}

func TestValidateRoleRejectsNonUDPCommand(t *testing.T) {
	err := validateRole(ca.RoleClient, ca.CreateChanRequest{}, ca.DirSend)
	require.Error(t, err)
}

func TestValidateRoleEchoAllowedEitherWay(t *testing.T) {
	require.NoError(t, validateRole(ca.RoleClient, ca.EchoCommand{}, ca.DirSend))
	require.NoError(t, validateRole(ca.RoleServer, ca.EchoCommand{}, ca.DirRecv))
}

func TestValidateRoleRecvErrorsAreRemote(t *testing.T) {
	err := validateRole(ca.RoleClient, ca.SearchRequest{}, ca.DirRecv)
	var rpe *ca.RemoteProtocolError
	require.ErrorAs(t, err, &rpe)
}

func TestValidateRoleSendErrorsAreLocal(t *testing.T) {
	err := validateRole(ca.RoleClient, ca.SearchResponse{}, ca.DirSend)
	var lpe *ca.LocalProtocolError
	require.ErrorAs(t, err, &lpe)
}
