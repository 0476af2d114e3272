package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"branchstock/internal/model"
)

type LocationRepository interface {
	Create(location *model.Location) error
	Update(location *model.Location) error
	Delete(id uuid.UUID) error
	FindByID(id uuid.UUID) (*model.Location, error)
	FindByName(name string) (*model.Location, error)
	// FindByNameLike resolves legacy free-text branch names with a
	// case-insensitive substring match.
	FindByNameLike(fragment string) (*model.Location, error)
	FindAll() ([]model.Location, error)
	FindByIDs(ids []uuid.UUID) ([]model.Location, error)
}

type locationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) LocationRepository {
	return &locationRepo{db}
}

func (r *locationRepo) Create(location *model.Location) error {
	return r.db.Create(location).Error
}

func (r *locationRepo) Update(location *model.Location) error {
	return r.db.Save(location).Error
}

func (r *locationRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Location{}, "id = ?", id).Error
}

func (r *locationRepo) FindByID(id uuid.UUID) (*model.Location, error) {
	var location model.Location
	if err := r.db.Preload("Manager.User").First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepo) FindByName(name string) (*model.Location, error) {
	var location model.Location
	if err := r.db.Where("name = ?", name).First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepo) FindByNameLike(fragment string) (*model.Location, error) {
	var location model.Location
	if err := r.db.Where("name ILIKE ?", "%"+fragment+"%").First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepo) FindAll() ([]model.Location, error) {
	var locations []model.Location
	err := r.db.Preload("Manager.User").Order("name ASC").Find(&locations).Error
	return locations, err
}

func (r *locationRepo) FindByIDs(ids []uuid.UUID) ([]model.Location, error) {
	var locations []model.Location
	err := r.db.Where("id IN ?", ids).Find(&locations).Error
	return locations, err
}
