package model

import (
	"time"
)

// Stock 股票基础信息
type Stock struct {
	Symbol    string    `gorm:"type:varchar(20);primaryKey" json:"symbol"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Market    string    `gorm:"type:varchar(20);index" json:"market"`
	Sector    string    `gorm:"type:varchar(50);index" json:"sector"`
	Industry  string    `gorm:"type:varchar(50)" json:"industry"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Stock) TableName() string {
	return "stocks"
}
