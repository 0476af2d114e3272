package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"branchstock/internal/model"
)

type AttendanceRepository interface {
	Create(a *model.Attendance) error
	Update(a *model.Attendance) error
	// FindOpenForDay returns the record for the given day that has not been
	// checked out yet.
	FindOpenForDay(employeeID uuid.UUID, day time.Time) (*model.Attendance, error)
	ListForEmployee(employeeID uuid.UUID, limit int) ([]model.Attendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db}
}

func (r *attendanceRepo) Create(a *model.Attendance) error {
	return r.db.Create(a).Error
}

func (r *attendanceRepo) Update(a *model.Attendance) error {
	return r.db.Save(a).Error
}

func (r *attendanceRepo) FindOpenForDay(employeeID uuid.UUID, day time.Time) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.
		Where("employee_id = ? AND day = ? AND check_out_time IS NULL", employeeID, day).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) ListForEmployee(employeeID uuid.UUID, limit int) ([]model.Attendance, error) {
	if limit <= 0 {
		limit = 31
	}
	var records []model.Attendance
	err := r.db.
		Where("employee_id = ?", employeeID).
		Order("day DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
