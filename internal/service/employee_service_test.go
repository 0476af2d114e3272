package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"branchstock/internal/model"
)

func TestCreateEmployeeProvisionsAccount(t *testing.T) {
	employees := newFakeEmployees()
	users := newFakeUsers()
	locations := newFakeLocations()
	branch := locations.add("Ikeja Branch")
	svc := NewEmployeeService(employees, users, locations, zap.NewNop())

	employee, err := svc.Create(adminUser(), &CreateEmployeeRequest{
		Email:              "amara@example.com",
		Password:           "first-week-99",
		Name:               "Amara Obi",
		EmployeeCode:       "EMP-0042",
		BranchID:           &branch.ID,
		CanViewInventory:   true,
		CanManageInventory: true,
	})
	require.NoError(t, err)
	require.NotNil(t, employee.User)
	assert.Equal(t, model.RoleEmployee, employee.User.Role)
	assert.True(t, employee.Grant.CanManage)

	// the user row carries the branch for staff lookups
	stored, err := users.FindByID(employee.UserID)
	require.NoError(t, err)
	require.NotNil(t, stored.LocationID)
	assert.Equal(t, branch.ID, *stored.LocationID)
	assert.True(t, stored.CheckPassword("first-week-99"))
}

func TestCreateEmployeeUnknownBranch(t *testing.T) {
	svc := NewEmployeeService(newFakeEmployees(), newFakeUsers(), newFakeLocations(), zap.NewNop())

	missing := newID()
	_, err := svc.Create(adminUser(), &CreateEmployeeRequest{
		Email:        "amara@example.com",
		Password:     "first-week-99",
		Name:         "Amara Obi",
		EmployeeCode: "EMP-0042",
		BranchID:     &missing,
	})
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestUpdateEmployeeSyncsUserBranch(t *testing.T) {
	employees := newFakeEmployees()
	users := newFakeUsers()
	locations := newFakeLocations()
	old := locations.add("Ikeja Branch")
	next := locations.add("Surulere Branch")
	svc := NewEmployeeService(employees, users, locations, zap.NewNop())

	employee, err := svc.Create(adminUser(), &CreateEmployeeRequest{
		Email:        "amara@example.com",
		Password:     "first-week-99",
		Name:         "Amara Obi",
		EmployeeCode: "EMP-0042",
		BranchID:     &old.ID,
	})
	require.NoError(t, err)
	// simulate a legacy row with a stale free-text branch name
	employee.Branch = "Ikeja"

	updated, err := svc.Update(adminUser(), employee.ID, &UpdateEmployeeRequest{
		BranchID: &next.ID,
		Salary:   250000,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.BranchID)
	assert.Equal(t, next.ID, *updated.BranchID)
	assert.Empty(t, updated.Branch, "legacy text is cleared once a reference exists")

	stored, err := users.FindByID(employee.UserID)
	require.NoError(t, err)
	require.NotNil(t, stored.LocationID)
	assert.Equal(t, next.ID, *stored.LocationID)
}

func TestMyProfile(t *testing.T) {
	employees := newFakeEmployees()
	users := newFakeUsers()
	locations := newFakeLocations()
	svc := NewEmployeeService(employees, users, locations, zap.NewNop())

	employee, err := svc.Create(adminUser(), &CreateEmployeeRequest{
		Email:        "amara@example.com",
		Password:     "first-week-99",
		Name:         "Amara Obi",
		EmployeeCode: "EMP-0042",
	})
	require.NoError(t, err)

	actor := &model.User{Role: model.RoleEmployee, IsActive: true}
	actor.ID = employee.UserID
	profile, err := svc.MyProfile(actor)
	require.NoError(t, err)
	assert.Equal(t, employee.ID, profile.ID)

	_, err = svc.MyProfile(employeeUser())
	assert.ErrorIs(t, err, ErrNotFound)
}
