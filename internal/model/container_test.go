package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClassFromISO(t *testing.T) {
	cases := []struct {
		code string
		want SizeClass
	}{
		{"22G1", SizeTwentyFt},
		{"2200", SizeTwentyFt},
		{"42G1", SizeFortyFt},
		{"45R1", SizeFortyFt},
		{"L5G1", SizeFortyFt}, // 45ft family stored in 40ft rows
	}
	for _, c := range cases {
		got, err := SizeClassFromISO(c.code)
		require.NoError(t, err, c.code)
		assert.Equal(t, c.want, got, c.code)
	}
}

func TestSizeClassFromISOUnknown(t *testing.T) {
	for _, code := range []string{"", "9300", "X2G1"} {
		_, err := SizeClassFromISO(code)
		assert.ErrorIs(t, err, ErrUnknownISOType, "code %q", code)
	}
}

func TestSubSlots(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, SizeTwentyFt.SubSlots())
	assert.Equal(t, []string{"A"}, SizeFortyFt.SubSlots())
}
