package policy

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"branchstock/internal/model"
)

type stubEmployees struct {
	byUser map[uuid.UUID]*model.Employee
}

func (s *stubEmployees) Create(*model.Employee) error { return nil }
func (s *stubEmployees) Update(*model.Employee) error { return nil }
func (s *stubEmployees) FindByID(uuid.UUID) (*model.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubEmployees) FindByUserID(userID uuid.UUID) (*model.Employee, error) {
	if emp, ok := s.byUser[userID]; ok {
		return emp, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubEmployees) FindAll() ([]model.Employee, error) { return nil, nil }

type stubLocations struct {
	locations []model.Location
}

func (s *stubLocations) Create(*model.Location) error { return nil }
func (s *stubLocations) Update(*model.Location) error { return nil }
func (s *stubLocations) Delete(uuid.UUID) error       { return nil }
func (s *stubLocations) FindByID(id uuid.UUID) (*model.Location, error) {
	for i := range s.locations {
		if s.locations[i].ID == id {
			return &s.locations[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubLocations) FindByName(name string) (*model.Location, error) {
	for i := range s.locations {
		if s.locations[i].Name == name {
			return &s.locations[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubLocations) FindByNameLike(fragment string) (*model.Location, error) {
	for i := range s.locations {
		if strings.Contains(strings.ToLower(s.locations[i].Name), strings.ToLower(fragment)) {
			return &s.locations[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubLocations) FindAll() ([]model.Location, error) { return s.locations, nil }
func (s *stubLocations) FindByIDs(ids []uuid.UUID) ([]model.Location, error) {
	var out []model.Location
	for _, id := range ids {
		if loc, err := s.FindByID(id); err == nil {
			out = append(out, *loc)
		}
	}
	return out, nil
}

func user(role model.Role, locationID *uuid.UUID) *model.User {
	u := &model.User{Role: role, LocationID: locationID, IsActive: true}
	u.ID = uuid.New()
	return u
}

func namedLocation(name string) model.Location {
	loc := model.Location{Name: name, City: "Lagos"}
	loc.ID = uuid.New()
	return loc
}

func TestAllowCapabilities(t *testing.T) {
	admin := user(model.RoleAdmin, nil)
	viewer := user(model.RoleEmployee, nil)
	manager := user(model.RoleEmployee, nil)
	nobody := user(model.RoleEmployee, nil)
	ghost := user(model.RoleEmployee, nil)

	employees := &stubEmployees{byUser: map[uuid.UUID]*model.Employee{
		viewer.ID:  {Grant: model.InventoryGrant{CanView: true}},
		manager.ID: {Grant: model.InventoryGrant{CanManage: true}},
		nobody.ID:  {},
	}}
	engine := NewEngine(employees, &stubLocations{})

	assert.NoError(t, engine.Allow(admin, CapInventoryRead))
	assert.NoError(t, engine.Allow(admin, CapInventoryWrite))

	assert.NoError(t, engine.Allow(viewer, CapInventoryRead))
	assert.ErrorIs(t, engine.Allow(viewer, CapInventoryWrite), ErrForbidden)

	// manage implies view
	assert.NoError(t, engine.Allow(manager, CapInventoryRead))
	assert.NoError(t, engine.Allow(manager, CapInventoryWrite))

	assert.ErrorIs(t, engine.Allow(nobody, CapInventoryRead), ErrForbidden)
	assert.ErrorIs(t, engine.Allow(nobody, CapInventoryWrite), ErrForbidden)

	// no employee record at all
	assert.ErrorIs(t, engine.Allow(ghost, CapInventoryRead), ErrForbidden)
}

func TestResolveScopeAdmin(t *testing.T) {
	engine := NewEngine(&stubEmployees{}, &stubLocations{})
	admin := user(model.RoleAdmin, nil)

	scope, err := engine.ResolveScope(admin, nil)
	require.NoError(t, err)
	assert.True(t, scope.All)

	branch := uuid.New()
	scope, err = engine.ResolveScope(admin, &branch)
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.Equal(t, []uuid.UUID{branch}, scope.LocationIDs)
}

func TestResolveScopeBranchReference(t *testing.T) {
	main := namedLocation("Main Warehouse")
	emp := user(model.RoleEmployee, nil)
	employees := &stubEmployees{byUser: map[uuid.UUID]*model.Employee{
		emp.ID: {BranchID: &main.ID, Grant: model.InventoryGrant{CanView: true}},
	}}
	engine := NewEngine(employees, &stubLocations{locations: []model.Location{main}})

	scope, err := engine.ResolveScope(emp, nil)
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.Equal(t, []uuid.UUID{main.ID}, scope.LocationIDs)
	assert.True(t, scope.Contains(main.ID))
	assert.False(t, scope.Contains(uuid.New()))
}

func TestResolveScopeAllBranchesGrant(t *testing.T) {
	emp := user(model.RoleEmployee, nil)
	employees := &stubEmployees{byUser: map[uuid.UUID]*model.Employee{
		emp.ID: {Grant: model.InventoryGrant{CanView: true, AccessibleBranches: "all"}},
	}}
	engine := NewEngine(employees, &stubLocations{})

	scope, err := engine.ResolveScope(emp, nil)
	require.NoError(t, err)
	assert.True(t, scope.All)
}

func TestResolveScopeLegacyBranchText(t *testing.T) {
	ikeja := namedLocation("Ikeja Branch")
	locations := &stubLocations{locations: []model.Location{ikeja, namedLocation("Surulere Branch")}}

	t.Run("substring match", func(t *testing.T) {
		emp := user(model.RoleEmployee, nil)
		employees := &stubEmployees{byUser: map[uuid.UUID]*model.Employee{
			emp.ID: {Branch: "ikeja", Grant: model.InventoryGrant{CanView: true}},
		}}
		engine := NewEngine(employees, locations)

		scope, err := engine.ResolveScope(emp, nil)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{ikeja.ID}, scope.LocationIDs)
	})

	t.Run("no match yields empty scope", func(t *testing.T) {
		emp := user(model.RoleEmployee, nil)
		employees := &stubEmployees{byUser: map[uuid.UUID]*model.Employee{
			emp.ID: {Branch: "Closed Branch", Grant: model.InventoryGrant{CanView: true}},
		}}
		engine := NewEngine(employees, locations)

		scope, err := engine.ResolveScope(emp, nil)
		require.NoError(t, err)
		assert.True(t, scope.Empty())
	})
}

func TestResolveScopeUserFallback(t *testing.T) {
	home := uuid.New()
	emp := user(model.RoleEmployee, &home)
	engine := NewEngine(&stubEmployees{}, &stubLocations{})

	scope, err := engine.ResolveScope(emp, nil)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{home}, scope.LocationIDs)
}

func TestAllowLocation(t *testing.T) {
	branch := namedLocation("Depot")
	other := namedLocation("Annex")
	emp := user(model.RoleEmployee, nil)
	employees := &stubEmployees{byUser: map[uuid.UUID]*model.Employee{
		emp.ID: {BranchID: &branch.ID, Grant: model.InventoryGrant{CanManage: true}},
	}}
	engine := NewEngine(employees, &stubLocations{locations: []model.Location{branch, other}})

	assert.NoError(t, engine.AllowLocation(emp, branch.ID))
	assert.ErrorIs(t, engine.AllowLocation(emp, other.ID), ErrWrongBranch)

	admin := user(model.RoleAdmin, nil)
	assert.NoError(t, engine.AllowLocation(admin, other.ID))
}
