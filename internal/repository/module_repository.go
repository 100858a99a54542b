package repository

import (
	"learnx_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(module *model.Module) error {
	return r.DB.Create(module).Error
}

func (r *ModuleRepository) FindByID(id uint) (*model.Module, error) {
	var module model.Module
	err := r.DB.First(&module, id).Error
	return &module, err
}

func (r *ModuleRepository) ListByTrack(trackID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("track_id = ?", trackID).Order("`order` ASC").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) Update(module *model.Module) error {
	return r.DB.Save(module).Error
}

func (r *ModuleRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Module{}, id).Error
}

func (r *ModuleRepository) SetVideoStatus(moduleID uint, status model.VideoStatus, duration float64) error {
	return r.DB.Model(&model.Module{}).
		Where("id = ?", moduleID).
		Updates(map[string]interface{}{"video_status": status, "video_duration": duration}).
		Error
}
