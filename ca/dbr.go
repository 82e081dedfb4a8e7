package ca

// FieldType is the DBR data_type wire code. See companion spec §3
// "Channel data type codes (DBR)".
type FieldType uint16

// Native DBR types. Augmented variants below are native + 7*k for
// k in {STS:1, TIME:2, GR:3, CTRL:4}.
const (
	DBR_STRING FieldType = iota // 0: 40-byte NUL-terminated ASCII
	DBR_INT16                   // 1: a.k.a DBR_SHORT
	DBR_FLOAT32                 // 2: a.k.a DBR_FLOAT
	DBR_ENUM                    // 3: u16 index
	DBR_CHAR                    // 4: u8
	DBR_INT32                   // 5: a.k.a DBR_LONG
	DBR_FLOAT64                 // 6: a.k.a DBR_DOUBLE

	numNativeTypes = 7
)

// Augmented variants, native type + augOffset(kind)*numNativeTypes.
const (
	augSTS   = 1
	augTIME  = 2
	augGR    = 3
	augCTRL  = 4
)

// STS_ variants: alarm status + severity prepended.
const (
	DBR_STS_STRING  = DBR_STRING + augSTS*numNativeTypes
	DBR_STS_INT16   = DBR_INT16 + augSTS*numNativeTypes
	DBR_STS_FLOAT32 = DBR_FLOAT32 + augSTS*numNativeTypes
	DBR_STS_ENUM    = DBR_ENUM + augSTS*numNativeTypes
	DBR_STS_CHAR    = DBR_CHAR + augSTS*numNativeTypes
	DBR_STS_INT32   = DBR_INT32 + augSTS*numNativeTypes
	DBR_STS_FLOAT64 = DBR_FLOAT64 + augSTS*numNativeTypes
)

// TIME_ variants: alarm status + severity + CA_EPOCH timestamp prepended.
const (
	DBR_TIME_STRING  = DBR_STRING + augTIME*numNativeTypes
	DBR_TIME_INT16   = DBR_INT16 + augTIME*numNativeTypes
	DBR_TIME_FLOAT32 = DBR_FLOAT32 + augTIME*numNativeTypes
	DBR_TIME_ENUM    = DBR_ENUM + augTIME*numNativeTypes
	DBR_TIME_CHAR    = DBR_CHAR + augTIME*numNativeTypes
	DBR_TIME_INT32   = DBR_INT32 + augTIME*numNativeTypes
	DBR_TIME_FLOAT64 = DBR_FLOAT64 + augTIME*numNativeTypes
)

// GR_ variants: alarm status + severity + graphic limits/units/precision.
const (
	DBR_GR_STRING  = DBR_STRING + augGR*numNativeTypes // not defined by CA; kept for symmetry, rejected at encode
	DBR_GR_INT16   = DBR_INT16 + augGR*numNativeTypes
	DBR_GR_FLOAT32 = DBR_FLOAT32 + augGR*numNativeTypes
	DBR_GR_ENUM    = DBR_ENUM + augGR*numNativeTypes
	DBR_GR_CHAR    = DBR_CHAR + augGR*numNativeTypes
	DBR_GR_INT32   = DBR_INT32 + augGR*numNativeTypes
	DBR_GR_FLOAT64 = DBR_FLOAT64 + augGR*numNativeTypes
)

// CTRL_ variants: alarm status + severity + graphic + control limits.
const (
	DBR_CTRL_STRING  = DBR_STRING + augCTRL*numNativeTypes // not defined by CA; kept for symmetry, rejected at encode
	DBR_CTRL_INT16   = DBR_INT16 + augCTRL*numNativeTypes
	DBR_CTRL_FLOAT32 = DBR_FLOAT32 + augCTRL*numNativeTypes
	DBR_CTRL_ENUM    = DBR_ENUM + augCTRL*numNativeTypes
	DBR_CTRL_CHAR    = DBR_CHAR + augCTRL*numNativeTypes
	DBR_CTRL_INT32   = DBR_INT32 + augCTRL*numNativeTypes
	DBR_CTRL_FLOAT64 = DBR_FLOAT64 + augCTRL*numNativeTypes
)

// Special types, outside the native*augmentation grid.
const (
	DBR_PUT_ACKT      FieldType = 35
	DBR_PUT_ACKS      FieldType = 36
	DBR_STSACK_STRING FieldType = 37
	DBR_CLASS_NAME    FieldType = 38
)

// elementSize is the wire size in bytes of one array element of a native
// type. DBR_STRING elements are fixed 40-byte slots.
var elementSize = map[FieldType]int{
	DBR_STRING:  40,
	DBR_INT16:   2,
	DBR_FLOAT32: 4,
	DBR_ENUM:    2,
	DBR_CHAR:    1,
	DBR_INT32:   4,
	DBR_FLOAT64: 8,
}

// NativeType strips any augmentation, returning the underlying native
// field type that describes the element layout.
func (sf FieldType) NativeType() (FieldType, error) {
	if sf < FieldType(4*numNativeTypes+numNativeTypes) {
		return sf % numNativeTypes, nil
	}
	return 0, NewLocalProtocolError("field type %d has no native element type", sf)
}

// ElementSize returns the wire size of one array element for this field
// type's underlying native type.
func (sf FieldType) ElementSize() (int, error) {
	nt, err := sf.NativeType()
	if err != nil {
		return 0, err
	}
	size, ok := elementSize[nt]
	if !ok {
		return 0, ErrTypeNotMatch
	}
	return size, nil
}

// IsValid reports whether the field type is one of the 35 numbered DBR
// variants or one of the 4 special types.
func (sf FieldType) IsValid() bool {
	if sf <= DBR_CTRL_FLOAT64 {
		return true
	}
	switch sf {
	case DBR_PUT_ACKT, DBR_PUT_ACKS, DBR_STSACK_STRING, DBR_CLASS_NAME:
		return true
	}
	return false
}

var fieldTypeNames = [...]string{
	"STRING", "INT16", "FLOAT32", "ENUM", "CHAR", "INT32", "FLOAT64",
	"STS_STRING", "STS_INT16", "STS_FLOAT32", "STS_ENUM", "STS_CHAR", "STS_INT32", "STS_FLOAT64",
	"TIME_STRING", "TIME_INT16", "TIME_FLOAT32", "TIME_ENUM", "TIME_CHAR", "TIME_INT32", "TIME_FLOAT64",
	"GR_STRING", "GR_INT16", "GR_FLOAT32", "GR_ENUM", "GR_CHAR", "GR_INT32", "GR_FLOAT64",
	"CTRL_STRING", "CTRL_INT16", "CTRL_FLOAT32", "CTRL_ENUM", "CTRL_CHAR", "CTRL_INT32", "CTRL_FLOAT64",
}

// String returns a debug-friendly DBR type name.
func (sf FieldType) String() string {
	if int(sf) < len(fieldTypeNames) {
		return "DBR_" + fieldTypeNames[sf]
	}
	switch sf {
	case DBR_PUT_ACKT:
		return "DBR_PUT_ACKT"
	case DBR_PUT_ACKS:
		return "DBR_PUT_ACKS"
	case DBR_STSACK_STRING:
		return "DBR_STSACK_STRING"
	case DBR_CLASS_NAME:
		return "DBR_CLASS_NAME"
	}
	return "DBR_<unknown>"
}

// AlarmStatus is the channel's alarm status code.
// See EPICS alarm.h; values are opaque to the wire protocol.
type AlarmStatus uint16

// AlarmSeverity is the channel's alarm severity code.
type AlarmSeverity uint16

// Defined severities.
const (
	SeverityNoAlarm AlarmSeverity = iota
	SeverityMinor
	SeverityMajor
	SeverityInvalid
)

// caEpochUnix is 1990-01-01 00:00:00 UTC in Unix seconds, the origin of DBR
// timestamp fields.
// See companion spec §3.
const caEpochUnix int64 = 631152000
