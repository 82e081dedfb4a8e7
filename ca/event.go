package ca

import "encoding/binary"

func init() {
	register(CMD_EVENT_ADD, decodeEventAdd)
	register(CMD_EVENT_CANCEL, decodeEventCancel)
}

// DBE event select mask bits, OR'd into EventAddRequest.Mask.
const (
	DBEValue    uint16 = 1
	DBELog      uint16 = 2
	DBEAlarm    uint16 = 4
	DBEProperty uint16 = 8
)

// eventAddFilterSize is the length of the legacy filter fields (low, high,
// to, unused) that still occupy fixed payload space even though no server
// has honored them in decades; see companion spec §9.
const eventAddFilterSize = 16

// EventAddRequest subscribes to a channel's value, asking the server to
// push an EventAddResponse on every change matching Mask. Correlated by
// SubscriptionID. See companion spec §8 scenario 5.
type EventAddRequest struct {
	DataType       FieldType
	Count          uint32
	SID            uint32
	SubscriptionID uint32
	Mask           uint16
}

func (sf EventAddRequest) ID() CommandID { return CMD_EVENT_ADD }

func (sf EventAddRequest) encode(_ uint16) (Header, Buffers, error) {
	b := make([]byte, eventAddFilterSize)
	binary.BigEndian.PutUint16(b[12:14], sf.Mask)
	h := Header{
		Command:     uint16(CMD_EVENT_ADD),
		PayloadSize: uint32(len(b)),
		DataType:    uint16(sf.DataType),
		DataCount:   sf.Count,
		Parameter1:  sf.SID,
		Parameter2:  sf.SubscriptionID,
	}
	return h, Buffers{b}, nil
}

// EventAddResponse delivers a subscription update, or (when Data has zero
// elements) confirms cancellation of the subscription named by
// SubscriptionID; see companion spec §9 on the wire-level ambiguity between
// an empty update and an EventCancelResponse, which this package leaves to
// the circuit layer to disambiguate using its subscription table.
type EventAddResponse struct {
	DataType       FieldType
	Count          uint32
	Status         uint32
	SubscriptionID uint32
	Data           ElementsView
}

func (sf EventAddResponse) ID() CommandID { return CMD_EVENT_ADD }

func (sf EventAddResponse) encode(_ uint16) (Header, Buffers, error) {
	h := Header{
		Command:     uint16(CMD_EVENT_ADD),
		DataType:    uint16(sf.DataType),
		DataCount:   sf.Count,
		PayloadSize: uint32(len(sf.Data.Bytes())),
		Parameter1:  sf.Status,
		Parameter2:  sf.SubscriptionID,
	}
	return h, Buffers{sf.Data.Bytes()}, nil
}

func decodeEventAdd(h Header, payload []byte, peerRole Role) (Command, error) {
	ft := FieldType(h.DataType)
	if peerRole == RoleClient {
		var mask uint16
		if len(payload) >= 14 {
			mask = u16(payload[12:14])
		}
		return EventAddRequest{
			DataType:       ft,
			Count:          h.DataCount,
			SID:            h.Parameter1,
			SubscriptionID: h.Parameter2,
			Mask:           mask,
		}, nil
	}
	view, err := DecodeElementsView(nativeOrZero(ft), int(h.DataCount), payload)
	if err != nil {
		return nil, err
	}
	return EventAddResponse{
		DataType:       ft,
		Count:          h.DataCount,
		Status:         h.Parameter1,
		SubscriptionID: h.Parameter2,
		Data:           view,
	}, nil
}

// EventCancelRequest unsubscribes a prior EventAddRequest, identified by
// SubscriptionID. The server answers with an EventAddResponse carrying a
// zero element count rather than a distinct command id; see EventAddResponse.
type EventCancelRequest struct {
	DataType       FieldType
	SID            uint32
	SubscriptionID uint32
}

func (sf EventCancelRequest) ID() CommandID { return CMD_EVENT_CANCEL }

func (sf EventCancelRequest) encode(_ uint16) (Header, Buffers, error) {
	h := Header{
		Command:    uint16(CMD_EVENT_CANCEL),
		DataType:   uint16(sf.DataType),
		DataCount:  0,
		Parameter1: sf.SID,
		Parameter2: sf.SubscriptionID,
	}
	return h, nil, nil
}

func decodeEventCancel(h Header, _ []byte, _ Role) (Command, error) {
	return EventCancelRequest{
		DataType:       FieldType(h.DataType),
		SID:            h.Parameter1,
		SubscriptionID: h.Parameter2,
	}, nil
}
