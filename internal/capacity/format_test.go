package capacity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crewplan/internal/capacity"
)

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "40h", capacity.FormatHours(40))
	assert.Equal(t, "0h", capacity.FormatHours(0))
	assert.Equal(t, "7.5h", capacity.FormatHours(7.5))
	assert.Equal(t, "6.2h", capacity.FormatHours(6.2))
}

func TestFormatUtilization(t *testing.T) {
	assert.Equal(t, "75.0%", capacity.FormatUtilization(75))
	assert.Equal(t, "112.5%", capacity.FormatUtilization(112.5))
	assert.Equal(t, "0.0%", capacity.FormatUtilization(0))
}

func TestUtilizationStatusBuckets(t *testing.T) {
	cases := []struct {
		pct  float64
		key  string
	}{
		{130, "overallocated"},
		{100, "overallocated"},
		{95, "high"},
		{90, "high"},
		{80, "good"},
		{70, "good"},
		{55, "moderate"},
		{40, "moderate"},
		{39.9, "low"},
		{0, "low"},
	}
	for _, tc := range cases {
		st := capacity.UtilizationStatus(tc.pct)
		assert.Equal(t, tc.key, st.Key, "pct=%v", tc.pct)
		assert.NotEmpty(t, st.Label)
		assert.NotEmpty(t, st.Color)
	}
}
