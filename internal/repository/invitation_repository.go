package repository

import (
	"learnx_backend/internal/model"

	"gorm.io/gorm"
)

type InvitationRepository struct {
	DB *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{DB: db}
}

func (r *InvitationRepository) Create(code *model.AdminInvitationCode) error {
	return r.DB.Create(code).Error
}

func (r *InvitationRepository) FindByCode(code string) (*model.AdminInvitationCode, error) {
	var invitation model.AdminInvitationCode
	err := r.DB.Where("code = ?", code).First(&invitation).Error
	return &invitation, err
}

func (r *InvitationRepository) List() ([]model.AdminInvitationCode, error) {
	var codes []model.AdminInvitationCode
	err := r.DB.Order("id DESC").Find(&codes).Error
	return codes, err
}

// Consume 原子地占用邀请码：只有未使用的行会被更新，
// 返回 false 表示已被其他请求抢先使用。
func (r *InvitationRepository) Consume(code string, usedByID uint) (bool, error) {
	result := r.DB.Model(&model.AdminInvitationCode{}).
		Where("code = ? AND is_used = ?", code, false).
		Updates(map[string]interface{}{"is_used": true, "used_by_id": usedByID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
