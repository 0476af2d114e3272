package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"branchstock/internal/model"
)

type ItemRepository interface {
	Create(item *model.Item) error
	Update(item *model.Item) error
	Delete(id uuid.UUID) error
	FindActive() ([]model.Item, error)
	FindByID(id uuid.UUID) (*model.Item, error)
	FindBySKUOrName(sku, name string) (*model.Item, error)
	CountByCategory(categoryID uuid.UUID) (int64, error)
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) Create(item *model.Item) error {
	return r.db.Create(item).Error
}

func (r *itemRepo) Update(item *model.Item) error {
	return r.db.Save(item).Error
}

func (r *itemRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Item{}, "id = ?", id).Error
}

func (r *itemRepo) FindActive() ([]model.Item, error) {
	var items []model.Item
	err := r.db.Preload("Category").Where("is_active = ?", true).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := r.db.Preload("Category").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBySKUOrName backs the duplicate guard on item creation.
func (r *itemRepo) FindBySKUOrName(sku, name string) (*model.Item, error) {
	var item model.Item
	if err := r.db.Where("sku = ? OR name = ?", sku, name).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) CountByCategory(categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Item{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
