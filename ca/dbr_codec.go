package ca

import (
	"encoding/binary"
	"math"
	"time"
)

// TimeStamp is the {seconds_since_epoch, nanoseconds} pair carried by TIME_
// variants. The epoch is 1990-01-01 00:00:00 UTC (caEpochUnix), not the
// Unix epoch. See companion spec §3.
type TimeStamp struct {
	Seconds uint32
	Nano    uint32
}

// NewTimeStamp converts a time.Time to the CA epoch representation.
func NewTimeStamp(t time.Time) TimeStamp {
	secs := t.Unix() - caEpochUnix
	if secs < 0 {
		secs = 0
	}
	return TimeStamp{Seconds: uint32(secs), Nano: uint32(t.Nanosecond())}
}

// Time converts back to a UTC time.Time.
func (sf TimeStamp) Time() time.Time {
	return time.Unix(caEpochUnix+int64(sf.Seconds), int64(sf.Nano)).UTC()
}

func (sf TimeStamp) encode(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], sf.Seconds)
	binary.BigEndian.PutUint32(b[4:8], sf.Nano)
}

func decodeTimeStamp(b []byte) TimeStamp {
	return TimeStamp{
		Seconds: binary.BigEndian.Uint32(b[0:4]),
		Nano:    binary.BigEndian.Uint32(b[4:8]),
	}
}

// StatusMeta is the alarm status/severity pair prepended to every
// augmented (STS_/TIME_/GR_/CTRL_) DBR variant.
type StatusMeta struct {
	Status   AlarmStatus
	Severity AlarmSeverity
}

const statusMetaSize = 4

func (sf StatusMeta) encode(b []byte) {
	binary.BigEndian.PutUint16(b[0:2], uint16(sf.Status))
	binary.BigEndian.PutUint16(b[2:4], uint16(sf.Severity))
}

func decodeStatusMeta(b []byte) StatusMeta {
	return StatusMeta{
		Status:   AlarmStatus(binary.BigEndian.Uint16(b[0:2])),
		Severity: AlarmSeverity(binary.BigEndian.Uint16(b[2:4])),
	}
}

// TimeMeta is the STS fields plus a timestamp, used by TIME_ variants.
type TimeMeta struct {
	StatusMeta
	Stamp TimeStamp
}

const timeMetaSize = statusMetaSize + 8

func (sf TimeMeta) encode(b []byte) {
	sf.StatusMeta.encode(b[0:4])
	sf.Stamp.encode(b[4:12])
}

func decodeTimeMeta(b []byte) TimeMeta {
	return TimeMeta{
		StatusMeta: decodeStatusMeta(b[0:4]),
		Stamp:      decodeTimeStamp(b[4:12]),
	}
}

// GraphicMeta is the STS fields plus display/alarm/warning limits (and,
// for ENUM, the state strings) used by GR_ variants. Which fields are
// meaningful depends on the native type: Units/limits for numeric types,
// Precision additionally for FLOAT32/FLOAT64, EnumStrings for ENUM,
// nothing beyond StatusMeta for STRING (GR_STRING/CTRL_STRING are not
// defined by the protocol; encoding one is a LocalProtocolError).
type GraphicMeta struct {
	StatusMeta
	Precision    int16
	Units        string
	EnumStrings  []string
	UpperDisplay float64
	LowerDisplay float64
	UpperAlarm   float64
	UpperWarning float64
	LowerWarning float64
	LowerAlarm   float64
}

// ControlMeta additionally carries the control (set-point clamp) limits.
// For ENUM, CTRL_ENUM has no extra fields beyond GR_ENUM, matching the
// protocol's own definition.
type ControlMeta struct {
	GraphicMeta
	UpperControl float64
	LowerControl float64
}

const unitsFieldSize = 8
const enumStringSize = 26
const maxEnumStrings = 16

// numericLimitSize returns the wire size of one limit field for the given
// native numeric type.
func numericLimitSize(native FieldType) int {
	switch native {
	case DBR_INT16:
		return 2
	case DBR_FLOAT32:
		return 4
	case DBR_INT32:
		return 4
	case DBR_FLOAT64:
		return 8
	case DBR_CHAR:
		return 1
	}
	return 0
}

func putNumeric(native FieldType, v float64, b []byte) {
	switch native {
	case DBR_INT16:
		binary.BigEndian.PutUint16(b, uint16(int16(v)))
	case DBR_FLOAT32:
		binary.BigEndian.PutUint32(b, math.Float32bits(float32(v)))
	case DBR_INT32:
		binary.BigEndian.PutUint32(b, uint32(int32(v)))
	case DBR_FLOAT64:
		binary.BigEndian.PutUint64(b, math.Float64bits(v))
	case DBR_CHAR:
		b[0] = byte(int8(v))
	}
}

func getNumeric(native FieldType, b []byte) float64 {
	switch native {
	case DBR_INT16:
		return float64(int16(binary.BigEndian.Uint16(b)))
	case DBR_FLOAT32:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
	case DBR_INT32:
		return float64(int32(binary.BigEndian.Uint32(b)))
	case DBR_FLOAT64:
		return math.Float64frombits(binary.BigEndian.Uint64(b))
	case DBR_CHAR:
		return float64(int8(b[0]))
	}
	return 0
}

func putFixedString(s string, n int, b []byte) {
	copy(b, s)
	for i := len(s); i < n; i++ {
		b[i] = 0
	}
}

func getFixedString(b []byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return string(b[:i])
}

// graphicMetaSize returns the wire size of a GR_ (or, with ctrl=true,
// CTRL_) metadata block for the given native type.
func graphicMetaSize(native FieldType, ctrl bool) (int, error) {
	switch native {
	case DBR_ENUM:
		return statusMetaSize + 2 + maxEnumStrings*enumStringSize, nil
	case DBR_STRING:
		return 0, NewLocalProtocolError("GR_STRING/CTRL_STRING are not defined")
	case DBR_INT16, DBR_INT32, DBR_CHAR, DBR_FLOAT32, DBR_FLOAT64:
		limbSize := numericLimitSize(native)
		size := statusMetaSize + unitsFieldSize + 6*limbSize
		if native == DBR_FLOAT32 || native == DBR_FLOAT64 {
			size += 2 // precision
		}
		if ctrl {
			size += 2 * limbSize
		}
		return size, nil
	}
	return 0, ErrTypeNotMatch
}

// EncodeGraphicMeta serializes a GR_ metadata block for the given native
// type (the native type, not the GR_ field type itself).
func EncodeGraphicMeta(native FieldType, m GraphicMeta) ([]byte, error) {
	size, err := graphicMetaSize(native, false)
	if err != nil {
		return nil, err
	}
	b := make([]byte, size)
	m.StatusMeta.encode(b[0:4])
	if native == DBR_ENUM {
		n := len(m.EnumStrings)
		if n > maxEnumStrings {
			n = maxEnumStrings
		}
		binary.BigEndian.PutUint16(b[4:6], uint16(n))
		off := 6
		for i := 0; i < maxEnumStrings; i++ {
			s := ""
			if i < len(m.EnumStrings) {
				s = m.EnumStrings[i]
			}
			putFixedString(s, enumStringSize, b[off:off+enumStringSize])
			off += enumStringSize
		}
		return b, nil
	}
	off := 4
	if native == DBR_FLOAT32 || native == DBR_FLOAT64 {
		binary.BigEndian.PutUint16(b[off:off+2], uint16(m.Precision))
		off += 2
	}
	putFixedString(m.Units, unitsFieldSize, b[off:off+unitsFieldSize])
	off += unitsFieldSize
	limbSize := numericLimitSize(native)
	limits := []float64{m.UpperDisplay, m.LowerDisplay, m.UpperAlarm, m.UpperWarning, m.LowerWarning, m.LowerAlarm}
	for _, v := range limits {
		putNumeric(native, v, b[off:off+limbSize])
		off += limbSize
	}
	return b, nil
}

// DecodeGraphicMeta parses a GR_ metadata block, returning the struct and
// the number of bytes consumed.
func DecodeGraphicMeta(native FieldType, b []byte) (GraphicMeta, int, error) {
	var m GraphicMeta
	size, err := graphicMetaSize(native, false)
	if err != nil {
		return m, 0, err
	}
	if len(b) < size {
		return m, 0, NewRemoteProtocolError("short GR_ metadata block")
	}
	m.StatusMeta = decodeStatusMeta(b[0:4])
	if native == DBR_ENUM {
		n := int(binary.BigEndian.Uint16(b[4:6]))
		off := 6
		m.EnumStrings = make([]string, 0, n)
		for i := 0; i < maxEnumStrings; i++ {
			s := getFixedString(b[off : off+enumStringSize])
			if i < n {
				m.EnumStrings = append(m.EnumStrings, s)
			}
			off += enumStringSize
		}
		return m, size, nil
	}
	off := 4
	if native == DBR_FLOAT32 || native == DBR_FLOAT64 {
		m.Precision = int16(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
	}
	m.Units = getFixedString(b[off : off+unitsFieldSize])
	off += unitsFieldSize
	limbSize := numericLimitSize(native)
	vals := make([]float64, 6)
	for i := range vals {
		vals[i] = getNumeric(native, b[off:off+limbSize])
		off += limbSize
	}
	m.UpperDisplay, m.LowerDisplay, m.UpperAlarm, m.UpperWarning, m.LowerWarning, m.LowerAlarm =
		vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]
	return m, size, nil
}

// EncodeControlMeta serializes a CTRL_ metadata block. For ENUM this is
// byte-identical to the GR_ENUM block (no control limits are defined).
func EncodeControlMeta(native FieldType, m ControlMeta) ([]byte, error) {
	grBytes, err := EncodeGraphicMeta(native, m.GraphicMeta)
	if err != nil {
		return nil, err
	}
	if native == DBR_ENUM {
		return grBytes, nil
	}
	limbSize := numericLimitSize(native)
	b := make([]byte, len(grBytes)+2*limbSize)
	copy(b, grBytes)
	off := len(grBytes)
	putNumeric(native, m.UpperControl, b[off:off+limbSize])
	off += limbSize
	putNumeric(native, m.LowerControl, b[off:off+limbSize])
	return b, nil
}

// DecodeControlMeta parses a CTRL_ metadata block.
func DecodeControlMeta(native FieldType, b []byte) (ControlMeta, int, error) {
	var m ControlMeta
	gr, n, err := DecodeGraphicMeta(native, b)
	if err != nil {
		return m, 0, err
	}
	m.GraphicMeta = gr
	if native == DBR_ENUM {
		return m, n, nil
	}
	limbSize := numericLimitSize(native)
	if len(b) < n+2*limbSize {
		return m, 0, NewRemoteProtocolError("short CTRL_ metadata block")
	}
	m.UpperControl = getNumeric(native, b[n:n+limbSize])
	m.LowerControl = getNumeric(native, b[n+limbSize:n+2*limbSize])
	return m, n + 2*limbSize, nil
}

// MetadataSize returns the size in bytes of the fixed metadata block that
// precedes the element array for the given DBR field type (0 for plain
// native types, which carry no metadata).
func MetadataSize(ft FieldType) (int, error) {
	if ft <= DBR_FLOAT64 {
		return 0, nil
	}
	native, err := ft.NativeType()
	if err != nil {
		return 0, err
	}
	switch {
	case ft >= DBR_STRING+augSTS*numNativeTypes && ft <= DBR_FLOAT64+augSTS*numNativeTypes:
		return statusMetaSize, nil
	case ft >= DBR_STRING+augTIME*numNativeTypes && ft <= DBR_FLOAT64+augTIME*numNativeTypes:
		return timeMetaSize, nil
	case ft >= DBR_STRING+augGR*numNativeTypes && ft <= DBR_FLOAT64+augGR*numNativeTypes:
		return graphicMetaSize(native, false)
	case ft >= DBR_STRING+augCTRL*numNativeTypes && ft <= DBR_FLOAT64+augCTRL*numNativeTypes:
		return graphicMetaSize(native, true)
	}
	return 0, ErrTypeNotMatch
}

// EncodeElements serializes count elements of the given native field type
// read from vals (numeric types) or strs (DBR_STRING), tail-padded to an
// 8-byte boundary with zero bytes that do not count toward data_count.
// Array payloads pad; a single scalar DBR_STRING element does not.
func EncodeElements(native FieldType, count int, vals []float64, strs []string) ([]byte, error) {
	size, ok := elementSize[native]
	if !ok {
		return nil, ErrTypeNotMatch
	}
	raw := size * count
	padded := raw
	if !(native == DBR_STRING && count == 1) {
		padded = PaddedSize(raw, 8)
	}
	b := make([]byte, padded)
	if native == DBR_STRING {
		for i := 0; i < count; i++ {
			s := ""
			if i < len(strs) {
				s = strs[i]
			}
			putFixedString(s, size, b[i*size:(i+1)*size])
		}
		return b, nil
	}
	for i := 0; i < count; i++ {
		putNumeric(native, vals[i], b[i*size:(i+1)*size])
	}
	return b, nil
}

// DecodeElements parses count elements of the given native field type from
// the front of b. The returned slices borrow no memory from b; callers
// that need zero-copy array views should use DecodeElementsView instead.
func DecodeElements(native FieldType, count int, b []byte) (vals []float64, strs []string, err error) {
	size, ok := elementSize[native]
	if !ok {
		return nil, nil, ErrTypeNotMatch
	}
	need := size * count
	if len(b) < need {
		return nil, nil, NewRemoteProtocolError("short element array")
	}
	if native == DBR_STRING {
		strs = make([]string, count)
		for i := 0; i < count; i++ {
			strs[i] = getFixedString(b[i*size : (i+1)*size])
		}
		return nil, strs, nil
	}
	vals = make([]float64, count)
	for i := 0; i < count; i++ {
		vals[i] = getNumeric(native, b[i*size:(i+1)*size])
	}
	return vals, nil, nil
}

// ElementsView is a read-only, non-copying view of an array payload still
// backed by the circuit's receive buffer. It remains valid only until the
// next Recv call that could overwrite the buffer. See companion spec §4.1
// and §5 for the borrowing/lifetime contract.
type ElementsView struct {
	Native FieldType
	Count  int
	raw    []byte
}

// DecodeElementsView borrows count elements of type native from the front
// of b without copying.
func DecodeElementsView(native FieldType, count int, b []byte) (ElementsView, error) {
	size, ok := elementSize[native]
	if !ok {
		return ElementsView{}, ErrTypeNotMatch
	}
	need := size * count
	if len(b) < need {
		return ElementsView{}, NewRemoteProtocolError("short element array")
	}
	return ElementsView{Native: native, Count: count, raw: b[:need]}, nil
}

// Float64 decodes element i as a float64. Panics if Native is DBR_STRING.
func (sf ElementsView) Float64(i int) float64 {
	if sf.Native == DBR_STRING {
		panic("caproto: Float64 called on a DBR_STRING view")
	}
	size := elementSize[sf.Native]
	return getNumeric(sf.Native, sf.raw[i*size:(i+1)*size])
}

// String decodes element i as a string. Panics unless Native is DBR_STRING.
func (sf ElementsView) String(i int) string {
	if sf.Native != DBR_STRING {
		panic("caproto: String called on a non-DBR_STRING view")
	}
	size := elementSize[sf.Native]
	return getFixedString(sf.raw[i*size : (i+1)*size])
}

// Bytes returns the raw borrowed backing array, excluding any tail pad.
func (sf ElementsView) Bytes() []byte {
	return sf.raw
}
