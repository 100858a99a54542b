package model

import "time"

// AdminInvitationCode 管理员注册邀请码，一次性使用
// swagger:model AdminInvitationCode
type AdminInvitationCode struct {
	BaseModel
	Code      string     `gorm:"size:36;uniqueIndex;not null" json:"code"`
	IsUsed    bool       `gorm:"default:false" json:"isUsed"`
	UsedByID  *uint      `json:"usedById"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (AdminInvitationCode) TableName() string {
	return "admin_invitation_codes"
}
