package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:30", 510, false},
		{"23:59", 1439, false},
		{"09:15:00", 555, false}, // MySQL TIME scan form
		{" 10:00 ", 600, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.wantErr {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.minutes, got, c.in)
	}
}

func TestNormalizeClock(t *testing.T) {
	assert.Equal(t, "09:15", NormalizeClock("09:15:00"))
	assert.Equal(t, "08:05", NormalizeClock("8:5"))
	// Unparseable input passes through untouched.
	assert.Equal(t, "bogus", NormalizeClock("bogus"))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "13:45", FormatClock(13*60+45))
}
