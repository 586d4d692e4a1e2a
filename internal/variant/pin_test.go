package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPinTruncation(t *testing.T) {
	cases := []struct {
		pin   Pin
		value string
		want  string
	}{
		{Pin{MaxPin: "x.x.x"}, "1.82.0", "1.82.0"},
		{Pin{MaxPin: "x.x"}, "1.82.0", "1.82"},
		{Pin{MaxPin: "x"}, "1.82.0", "1"},
		{Pin{MaxPin: "x.x.x.x"}, "1.82.0", "1.82.0"},
		{Pin{}, "1.82.0", "1.82.0"},
	}
	for _, tc := range cases {
		got, err := tc.pin.Apply(tc.value)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "pin %+v value %s", tc.pin, tc.value)
	}
}

func TestPinRangeWithMinPin(t *testing.T) {
	pin := Pin{MinPin: "x.x.x", MaxPin: "x.x"}
	got, err := pin.Apply("1.82.0")
	require.NoError(t, err)
	assert.Equal(t, ">=1.82.0,<1.83", got)
}

func TestPinEmptyValue(t *testing.T) {
	_, err := Pin{MaxPin: "x"}.Apply("")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestPinNonNumericUpperBound(t *testing.T) {
	_, err := Pin{MinPin: "x", MaxPin: "x.x"}.Apply("1.beta")
	assert.ErrorIs(t, err, ErrConfig)
}
