package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomShifts(t *testing.T) {
	periodStart := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 0, 7)

	shifts := GenerateRandomShifts(periodStart, 50, 6)
	require.Len(t, shifts, 50)

	for _, shift := range shifts {
		assert.Nil(t, shift.StaffID)
		assert.NoError(t, ValidateShiftTime(shift))
		assert.Equal(t, 6*time.Hour, shift.Duration())
		assert.False(t, shift.StartTime.Before(periodStart))
		assert.True(t, shift.StartTime.Before(periodEnd))
		assert.Contains(t, shiftStartHours, shift.StartTime.Hour())
	}
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("王伟")
	assert.Regexp(t, `^w[a-z]*w[a-z]*[0-9]{1,3}$`, username)
}
