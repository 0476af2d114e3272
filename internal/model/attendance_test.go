package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.September, 1, hour, minute, 0, 0, time.UTC)
}

func TestNewAttendanceOnTime(t *testing.T) {
	employeeID := uuid.New()
	a, err := NewAttendance(employeeID, at(9, 0))
	require.NoError(t, err)
	assert.Equal(t, AttendancePresent, a.Status)
	assert.Equal(t, employeeID, a.EmployeeID)
	assert.Equal(t, at(0, 0), a.Day)
	assert.Nil(t, a.CheckOutTime)
}

func TestNewAttendanceTardyAfterStart(t *testing.T) {
	a, err := NewAttendance(uuid.New(), at(9, 1))
	require.NoError(t, err)
	assert.Equal(t, AttendanceTardy, a.Status)

	a, err = NewAttendance(uuid.New(), at(10, 59))
	require.NoError(t, err)
	assert.Equal(t, AttendanceTardy, a.Status)
}

func TestNewAttendanceRejectedAtCutoff(t *testing.T) {
	_, err := NewAttendance(uuid.New(), at(11, 0))
	assert.ErrorIs(t, err, ErrCheckInWindowClosed)

	_, err = NewAttendance(uuid.New(), at(14, 30))
	assert.ErrorIs(t, err, ErrCheckInWindowClosed)
}

func TestCloseFullDay(t *testing.T) {
	a, err := NewAttendance(uuid.New(), at(8, 55))
	require.NoError(t, err)

	require.NoError(t, a.Close(at(17, 5)))
	assert.Equal(t, AttendanceFullDay, a.Status)
	assert.Equal(t, 490, a.WorkMinutes)
	require.NotNil(t, a.CheckOutTime)
	assert.Equal(t, at(17, 5), *a.CheckOutTime)
}

func TestCloseEarlyOut(t *testing.T) {
	a, err := NewAttendance(uuid.New(), at(9, 0))
	require.NoError(t, err)

	require.NoError(t, a.Close(at(16, 0)))
	assert.Equal(t, AttendanceEarlyOut, a.Status)
	assert.Equal(t, 420, a.WorkMinutes)
}

func TestCloseKeepsTardyStatus(t *testing.T) {
	a, err := NewAttendance(uuid.New(), at(10, 30))
	require.NoError(t, err)
	require.Equal(t, AttendanceTardy, a.Status)

	require.NoError(t, a.Close(at(17, 30)))
	assert.Equal(t, AttendanceTardy, a.Status)
	assert.Equal(t, 420, a.WorkMinutes)
}

func TestCloseTwiceRejected(t *testing.T) {
	a, err := NewAttendance(uuid.New(), at(9, 0))
	require.NoError(t, err)
	require.NoError(t, a.Close(at(17, 0)))

	assert.ErrorIs(t, a.Close(at(18, 0)), ErrNoOpenCheckIn)
	assert.Equal(t, 480, a.WorkMinutes, "a second close must not restate the day")
}

func TestDayOfKeepsLocation(t *testing.T) {
	cairo, err := time.LoadLocation("Africa/Cairo")
	require.NoError(t, err)

	stamp := time.Date(2026, time.September, 1, 10, 15, 42, 0, cairo)
	day := DayOf(stamp)
	assert.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, cairo), day)
}
