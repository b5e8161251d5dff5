package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatEpoch(t *testing.T) {
	assert.Equal(t, "2023-11-14T22:13:20Z", FormatEpoch(1700000000))
	assert.Equal(t, "", FormatEpoch(0))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input  string
		secs   int
		wantOK bool
	}{
		{"08:10:00", 8*3600 + 10*60, true},
		{"7:59:00", 7*3600 + 59*60, true},
		{"25:01:30", 25*3600 + 60 + 30, true},
		{"08:10", 8*3600 + 10*60, true},
		{"08:10:00:99", 8*3600 + 10*60, true},
		{"bad", 0, false},
		{"", 0, false},
		{"08:xx:00", 0, false},
		{"-1:00:00", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			secs, ok := ParseClock(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.secs, secs)
		})
	}
}
