package db

import "time"

// 字段长度上限，与表结构保持一致
const (
	MaxContactNameLength = 50
	MaxDetailTypeLength  = 20
	MaxDetailValueLength = 200
)

// Contact 联系人，Name 同时作为导入时的合并键
type Contact struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:50;not null;index" json:"name"`
	IsBookmarked bool            `gorm:"not null;default:false" json:"isBookmarked"`
	Details      []ContactDetail `gorm:"constraint:OnDelete:CASCADE" json:"contactDetails"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ContactDetail 联系方式，同一联系人下 (Type, Value) 唯一
type ContactDetail struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ContactID uint      `gorm:"not null;index:idx_contact_detail_unique,unique" json:"contactId"`
	Type      string    `gorm:"size:20;not null;index:idx_contact_detail_unique,unique" json:"type"`
	Value     string    `gorm:"size:200;not null;index:idx_contact_detail_unique,unique" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 固定联系方式表名
func (ContactDetail) TableName() string {
	return "contact_details"
}
