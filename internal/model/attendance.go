package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

const (
	AttendancePresent  AttendanceStatus = "PRESENT"
	AttendanceTardy    AttendanceStatus = "TARDY"
	AttendanceEarlyOut AttendanceStatus = "EARLY_OUT"
	AttendanceFullDay  AttendanceStatus = "FULL_DAY"
)

// Workday boundaries, evaluated in the configured local timezone. Arriving
// after the cutoff counts the day as an absence and is rejected outright.
const (
	OfficialStartHour = 9
	OfficialEndHour   = 17
	CheckInCutoffHour = 11
)

var (
	ErrCheckInWindowClosed = errors.New("check-in closes at 11:00, this day counts as an absence")
	ErrAlreadyCheckedIn    = errors.New("already checked in today without checking out")
	ErrNoOpenCheckIn       = errors.New("no open check-in found for today")
)

// Attendance is one employee workday. A record is open while CheckOutTime is
// nil; at most one open record may exist per (employee, day).
type Attendance struct {
	BaseModel
	EmployeeID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_attendance_employee_day" json:"employee_id"`
	Employee     *Employee        `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Day          time.Time        `gorm:"type:date;not null;index:idx_attendance_employee_day" json:"day"`
	CheckInTime  time.Time        `gorm:"not null" json:"check_in_time"`
	CheckOutTime *time.Time       `json:"check_out_time,omitempty"`
	WorkMinutes  int              `gorm:"default:0" json:"work_minutes"`
	Status       AttendanceStatus `gorm:"type:varchar(20);not null" json:"status"`
}

// DayOf truncates a timestamp to local midnight, the attendance day key.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NewAttendance opens a day record for a local check-in time. Arrival at or
// after the cutoff hour is rejected; arrival after the official start is
// recorded as tardy.
func NewAttendance(employeeID uuid.UUID, checkIn time.Time) (*Attendance, error) {
	if checkIn.Hour() >= CheckInCutoffHour {
		return nil, ErrCheckInWindowClosed
	}
	status := AttendancePresent
	if checkIn.Hour() > OfficialStartHour ||
		(checkIn.Hour() == OfficialStartHour && checkIn.Minute() > 0) {
		status = AttendanceTardy
	}
	return &Attendance{
		EmployeeID:  employeeID,
		Day:         DayOf(checkIn),
		CheckInTime: checkIn,
		Status:      status,
	}, nil
}

// Close stamps the check-out, computes the worked minutes and settles the
// final status. A tardy arrival stays tardy; otherwise leaving before the
// official end is an early out and a full shift is a full day.
func (a *Attendance) Close(checkOut time.Time) error {
	if a.CheckOutTime != nil {
		return ErrNoOpenCheckIn
	}
	out := checkOut
	a.CheckOutTime = &out
	a.WorkMinutes = int(checkOut.Sub(a.CheckInTime).Round(time.Minute) / time.Minute)
	if a.Status != AttendanceTardy {
		if checkOut.Hour() < OfficialEndHour {
			a.Status = AttendanceEarlyOut
		} else {
			a.Status = AttendanceFullDay
		}
	}
	return nil
}
