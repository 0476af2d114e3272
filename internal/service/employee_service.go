package service

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"branchstock/internal/model"
	"branchstock/internal/repository"
	"branchstock/pkg/validator"
)

type CreateEmployeeRequest struct {
	Email        string     `json:"email" validate:"required,email"`
	Password     string     `json:"password" validate:"required,min=8"`
	Name         string     `json:"name" validate:"required"`
	EmployeeCode string     `json:"employee_code" validate:"required"`
	Designation  string     `json:"designation"`
	Department   string     `json:"department"`
	BranchID     *uuid.UUID `json:"branch_id"`
	PhoneNumber  string     `json:"phone_number"`
	Salary       int64      `json:"salary" validate:"gte=0"`

	CanViewInventory   bool   `json:"can_view_inventory"`
	CanManageInventory bool   `json:"can_manage_inventory"`
	AccessibleBranches string `json:"accessible_branches"`
}

type UpdateEmployeeRequest struct {
	Designation string     `json:"designation"`
	Department  string     `json:"department"`
	BranchID    *uuid.UUID `json:"branch_id"`
	PhoneNumber string     `json:"phone_number"`
	Salary      int64      `json:"salary" validate:"gte=0"`

	CanViewInventory   *bool   `json:"can_view_inventory"`
	CanManageInventory *bool   `json:"can_manage_inventory"`
	AccessibleBranches *string `json:"accessible_branches"`
}

// EmployeeService manages the HR records behind employee accounts. The user
// row's LocationID is kept in sync with the employee branch so branch-staff
// lookups (notification fan-out) stay a single indexed query.
type EmployeeService interface {
	Create(actor *model.User, req *CreateEmployeeRequest) (*model.Employee, error)
	Update(actor *model.User, id uuid.UUID, req *UpdateEmployeeRequest) (*model.Employee, error)
	List() ([]model.Employee, error)
	Get(id uuid.UUID) (*model.Employee, error)
	MyProfile(actor *model.User) (*model.Employee, error)
}

type employeeService struct {
	employees repository.EmployeeRepository
	users     repository.UserRepository
	locations repository.LocationRepository
	log       *zap.Logger
}

func NewEmployeeService(employees repository.EmployeeRepository, users repository.UserRepository, locations repository.LocationRepository, log *zap.Logger) EmployeeService {
	return &employeeService{employees: employees, users: users, locations: locations, log: log}
}

func (s *employeeService) Create(actor *model.User, req *CreateEmployeeRequest) (*model.Employee, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	if _, err := s.users.FindByEmail(req.Email); err == nil {
		return nil, badRequest("a user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if req.BranchID != nil {
		if _, err := s.locations.FindByID(*req.BranchID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, badRequest("branch does not exist")
			}
			return nil, err
		}
	}

	user := &model.User{
		Email:      req.Email,
		Name:       req.Name,
		Role:       model.RoleEmployee,
		LocationID: req.BranchID,
		IsActive:   true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	user.CreatedBy = actor.ID.String()
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	employee := &model.Employee{
		UserID:       user.ID,
		EmployeeCode: req.EmployeeCode,
		Designation:  req.Designation,
		Department:   req.Department,
		BranchID:     req.BranchID,
		PhoneNumber:  req.PhoneNumber,
		Salary:       req.Salary,
		Grant: model.InventoryGrant{
			CanView:            req.CanViewInventory,
			CanManage:          req.CanManageInventory,
			AccessibleBranches: req.AccessibleBranches,
		},
	}
	employee.CreatedBy = actor.ID.String()
	if err := s.employees.Create(employee); err != nil {
		return nil, err
	}
	employee.User = user

	s.log.Info("employee created",
		zap.String("code", employee.EmployeeCode), zap.String("email", user.Email))
	return employee, nil
}

func (s *employeeService) Update(actor *model.User, id uuid.UUID, req *UpdateEmployeeRequest) (*model.Employee, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	employee, err := s.employees.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.BranchID != nil {
		if _, err := s.locations.FindByID(*req.BranchID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, badRequest("branch does not exist")
			}
			return nil, err
		}
	}

	branchChanged := false
	if req.BranchID != nil && (employee.BranchID == nil || *employee.BranchID != *req.BranchID) {
		employee.BranchID = req.BranchID
		// A canonical reference supersedes any legacy free-text name.
		employee.Branch = ""
		branchChanged = true
	}
	employee.Designation = req.Designation
	employee.Department = req.Department
	employee.PhoneNumber = req.PhoneNumber
	employee.Salary = req.Salary
	if req.CanViewInventory != nil {
		employee.Grant.CanView = *req.CanViewInventory
	}
	if req.CanManageInventory != nil {
		employee.Grant.CanManage = *req.CanManageInventory
	}
	if req.AccessibleBranches != nil {
		employee.Grant.AccessibleBranches = *req.AccessibleBranches
	}
	employee.UpdatedBy = actor.ID.String()
	if err := s.employees.Update(employee); err != nil {
		return nil, err
	}

	if branchChanged {
		user, err := s.users.FindByID(employee.UserID)
		if err != nil {
			return nil, err
		}
		user.LocationID = employee.BranchID
		user.UpdatedBy = actor.ID.String()
		if err := s.users.Update(user); err != nil {
			return nil, err
		}
	}
	return employee, nil
}

func (s *employeeService) List() ([]model.Employee, error) {
	return s.employees.FindAll()
}

func (s *employeeService) Get(id uuid.UUID) (*model.Employee, error) {
	employee, err := s.employees.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) MyProfile(actor *model.User) (*model.Employee, error) {
	employee, err := s.employees.FindByUserID(actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return employee, nil
}
