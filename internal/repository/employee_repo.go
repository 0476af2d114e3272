package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"branchstock/internal/model"
)

type EmployeeRepository interface {
	Create(employee *model.Employee) error
	Update(employee *model.Employee) error
	FindByID(id uuid.UUID) (*model.Employee, error)
	FindByUserID(userID uuid.UUID) (*model.Employee, error)
	FindAll() ([]model.Employee, error)
}

type employeeRepo struct {
	db *gorm.DB
}

func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db}
}

func (r *employeeRepo) Create(employee *model.Employee) error {
	return r.db.Create(employee).Error
}

func (r *employeeRepo) Update(employee *model.Employee) error {
	return r.db.Save(employee).Error
}

func (r *employeeRepo) FindByID(id uuid.UUID) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.Preload("User").Preload("BranchRef").First(&employee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) FindByUserID(userID uuid.UUID) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.Preload("User").Preload("BranchRef").Where("user_id = ?", userID).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) FindAll() ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.Preload("User").Preload("BranchRef").Find(&employees).Error
	return employees, err
}
