package model

// Badge 等级徽章，按达到的等级授予
// swagger:model Badge
type Badge struct {
	BaseModel
	Name          string `gorm:"size:100;unique;not null" json:"name"`
	Description   string `gorm:"size:255" json:"description"`
	Icon          string `gorm:"size:100" json:"icon"`
	RequiredLevel int    `gorm:"default:1" json:"requiredLevel"`
}

func (Badge) TableName() string {
	return "badges"
}
