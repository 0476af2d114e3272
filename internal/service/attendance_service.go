package service

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"branchstock/internal/model"
	"branchstock/internal/policy"
	"branchstock/internal/repository"
)

// TodayStatus is the caller's current attendance state. Attendance is nil
// when no open record exists.
type TodayStatus struct {
	CheckedIn  bool              `json:"checked_in"`
	Attendance *model.Attendance `json:"attendance,omitempty"`
}

// AttendanceService records the daily check-in/check-out cycle. Admin
// accounts do not track attendance; only employees with an HR record can
// check in.
type AttendanceService interface {
	CheckIn(actor *model.User) (*model.Attendance, error)
	CheckOut(actor *model.User) (*model.Attendance, error)
	Today(actor *model.User) (*TodayStatus, error)
	History(actor *model.User, limit int) ([]model.Attendance, error)
}

type attendanceService struct {
	attendance repository.AttendanceRepository
	employees  repository.EmployeeRepository
	tz         *time.Location
	now        func() time.Time
	log        *zap.Logger
}

func NewAttendanceService(attendance repository.AttendanceRepository, employees repository.EmployeeRepository, tz *time.Location, log *zap.Logger) AttendanceService {
	if tz == nil {
		tz = time.UTC
	}
	return &attendanceService{
		attendance: attendance,
		employees:  employees,
		tz:         tz,
		now:        time.Now,
		log:        log,
	}
}

func (s *attendanceService) employeeFor(actor *model.User) (*model.Employee, error) {
	if actor.IsAdmin() {
		return nil, policy.ErrForbidden
	}
	employee, err := s.employees.FindByUserID(actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return employee, nil
}

func (s *attendanceService) CheckIn(actor *model.User) (*model.Attendance, error) {
	employee, err := s.employeeFor(actor)
	if err != nil {
		return nil, err
	}

	local := s.now().In(s.tz)
	_, err = s.attendance.FindOpenForDay(employee.ID, model.DayOf(local))
	if err == nil {
		return nil, model.ErrAlreadyCheckedIn
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record, err := model.NewAttendance(employee.ID, local)
	if err != nil {
		return nil, err
	}
	if err := s.attendance.Create(record); err != nil {
		return nil, err
	}

	s.log.Info("employee checked in",
		zap.String("employee_code", employee.EmployeeCode),
		zap.String("status", string(record.Status)))
	return record, nil
}

func (s *attendanceService) CheckOut(actor *model.User) (*model.Attendance, error) {
	employee, err := s.employeeFor(actor)
	if err != nil {
		return nil, err
	}

	local := s.now().In(s.tz)
	record, err := s.attendance.FindOpenForDay(employee.ID, model.DayOf(local))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNoOpenCheckIn
		}
		return nil, err
	}
	if err := record.Close(local); err != nil {
		return nil, err
	}
	if err := s.attendance.Update(record); err != nil {
		return nil, err
	}

	s.log.Info("employee checked out",
		zap.String("employee_code", employee.EmployeeCode),
		zap.Int("work_minutes", record.WorkMinutes),
		zap.String("status", string(record.Status)))
	return record, nil
}

func (s *attendanceService) Today(actor *model.User) (*TodayStatus, error) {
	if actor.IsAdmin() {
		return &TodayStatus{CheckedIn: false}, nil
	}
	employee, err := s.employeeFor(actor)
	if err != nil {
		return nil, err
	}

	local := s.now().In(s.tz)
	record, err := s.attendance.FindOpenForDay(employee.ID, model.DayOf(local))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &TodayStatus{CheckedIn: false}, nil
		}
		return nil, err
	}
	return &TodayStatus{CheckedIn: true, Attendance: record}, nil
}

func (s *attendanceService) History(actor *model.User, limit int) ([]model.Attendance, error) {
	employee, err := s.employeeFor(actor)
	if err != nil {
		return nil, err
	}
	return s.attendance.ListForEmployee(employee.ID, limit)
}
