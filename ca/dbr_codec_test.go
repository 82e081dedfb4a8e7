package ca

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeStampRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)
	ts := NewTimeStamp(now)
	got := ts.Time()
	require.Equal(t, now.Unix(), got.Unix())
	require.Equal(t, now.Nanosecond(), got.Nanosecond())
}

func TestTimeStampBeforeEpochClampsToZero(t *testing.T) {
	before := time.Unix(caEpochUnix-10, 0).UTC()
	ts := NewTimeStamp(before)
	require.Equal(t, uint32(0), ts.Seconds)
}

func TestEncodeDecodeElementsNumeric(t *testing.T) {
	vals := []float64{1, -2, 3.5, 4, 5}
	b, err := EncodeElements(DBR_FLOAT64, len(vals), vals, nil)
	require.NoError(t, err)
	require.Len(t, b, 8*len(vals))

	got, strs, err := DecodeElements(DBR_FLOAT64, len(vals), b)
	require.NoError(t, err)
	require.Nil(t, strs)
	require.Equal(t, vals, got)
}

func TestEncodeElementsStringScalarNotPadded(t *testing.T) {
	b, err := EncodeElements(DBR_STRING, 1, nil, []string{"hello"})
	require.NoError(t, err)
	require.Len(t, b, 40)
}

func TestEncodeElementsArrayPaddedToEightBytes(t *testing.T) {
	b, err := EncodeElements(DBR_INT16, 3, []float64{1, 2, 3}, nil)
	require.NoError(t, err)
	// 3 elements * 2 bytes = 6, padded to 8
	require.Len(t, b, 8)
}

func TestElementsViewBorrowsUnderlyingBuffer(t *testing.T) {
	vals := []float64{10, 20, 30}
	b, err := EncodeElements(DBR_INT32, len(vals), vals, nil)
	require.NoError(t, err)

	view, err := DecodeElementsView(DBR_INT32, len(vals), b)
	require.NoError(t, err)
	require.Equal(t, len(vals), view.Count)
	for i, v := range vals {
		require.Equal(t, v, view.Float64(i))
	}
}

func TestGraphicMetaRoundTripNumeric(t *testing.T) {
	m := GraphicMeta{
		StatusMeta:   StatusMeta{Status: 3, Severity: SeverityMinor},
		Precision:    2,
		Units:        "mA",
		UpperDisplay: 10, LowerDisplay: -10,
		UpperAlarm: 9, UpperWarning: 8, LowerWarning: -8, LowerAlarm: -9,
	}
	b, err := EncodeGraphicMeta(DBR_FLOAT32, m)
	require.NoError(t, err)

	got, n, err := DecodeGraphicMeta(DBR_FLOAT32, b)
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.Equal(t, m.StatusMeta, got.StatusMeta)
	require.Equal(t, m.Precision, got.Precision)
	require.Equal(t, m.Units, got.Units)
	require.InDelta(t, m.UpperDisplay, got.UpperDisplay, 0.0001)
	require.InDelta(t, m.LowerAlarm, got.LowerAlarm, 0.0001)
}

func TestGraphicMetaRoundTripEnum(t *testing.T) {
	m := GraphicMeta{
		StatusMeta:  StatusMeta{Status: 0, Severity: SeverityNoAlarm},
		EnumStrings: []string{"OFF", "ON"},
	}
	b, err := EncodeGraphicMeta(DBR_ENUM, m)
	require.NoError(t, err)

	got, n, err := DecodeGraphicMeta(DBR_ENUM, b)
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.Equal(t, []string{"OFF", "ON"}, got.EnumStrings)
}

func TestGraphicMetaRejectsString(t *testing.T) {
	_, err := EncodeGraphicMeta(DBR_STRING, GraphicMeta{})
	require.Error(t, err)
}

func TestControlMetaRoundTrip(t *testing.T) {
	m := ControlMeta{
		GraphicMeta: GraphicMeta{
			StatusMeta: StatusMeta{Status: 1, Severity: SeverityMajor},
			Units:      "V",
		},
		UpperControl: 100,
		LowerControl: -100,
	}
	b, err := EncodeControlMeta(DBR_INT32, m)
	require.NoError(t, err)

	got, n, err := DecodeControlMeta(DBR_INT32, b)
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.Equal(t, m.UpperControl, got.UpperControl)
	require.Equal(t, m.LowerControl, got.LowerControl)
}

func TestMetadataSizeByAugmentation(t *testing.T) {
	size, err := MetadataSize(DBR_FLOAT64)
	require.NoError(t, err)
	require.Equal(t, 0, size)

	size, err = MetadataSize(DBR_STS_FLOAT64)
	require.NoError(t, err)
	require.Equal(t, statusMetaSize, size)

	size, err = MetadataSize(DBR_TIME_FLOAT64)
	require.NoError(t, err)
	require.Equal(t, timeMetaSize, size)
}

func TestFieldTypeNativeTypeAndValidity(t *testing.T) {
	nt, err := DBR_CTRL_FLOAT64.NativeType()
	require.NoError(t, err)
	require.Equal(t, DBR_FLOAT64, nt)

	require.True(t, DBR_CTRL_FLOAT64.IsValid())
	require.True(t, DBR_CLASS_NAME.IsValid())
	require.False(t, FieldType(9999).IsValid())
}
