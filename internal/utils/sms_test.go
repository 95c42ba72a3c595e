package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMSSegments(t *testing.T) {
	assert.Equal(t, 0, SMSSegments(""))
	assert.Equal(t, 1, SMSSegments("See you at 10am!"))
	assert.Equal(t, 1, SMSSegments(strings.Repeat("a", 160)))
	assert.Equal(t, 2, SMSSegments(strings.Repeat("a", 161)))
	assert.Equal(t, 3, SMSSegments(strings.Repeat("a", 2*153+1)))
}

func TestSMSSegmentsExtensionChars(t *testing.T) {
	// Extension table characters cost two septets each.
	assert.Equal(t, 1, SMSSegments(strings.Repeat("€", 80)))
	assert.Equal(t, 2, SMSSegments(strings.Repeat("€", 81)))
}

func TestSMSSegmentsUnicode(t *testing.T) {
	// One non-GSM rune switches the whole body to UCS-2.
	assert.Equal(t, 1, SMSSegments("Großartig 💪"))
	assert.Equal(t, 1, SMSSegments(strings.Repeat("ž", 70)))
	assert.Equal(t, 2, SMSSegments(strings.Repeat("ž", 71)))
}
