package models

type Advertisement struct {
	BaseModel
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	Price       int    `gorm:"not null;index"`
	UserID      uint   `gorm:"not null;index"`
	User        *User  `gorm:"constraint:OnDelete:CASCADE"`
	// ключ изображения в storage, пусто если изображения нет
	ImageKey    string `gorm:"size:255;not null;default:''"`
}

// OwnerID - владелец объявления (для проверки прав)
func (a *Advertisement) OwnerID() uint {
	return a.UserID
}

func (a *Advertisement) HasImage() bool {
	return a.ImageKey != ""
}
