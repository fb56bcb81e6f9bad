package models

type User struct {
	BaseModel
	Email           string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash    string     `json:"-" gorm:"type:text;not null"`
	FullName        string     `json:"fullName" gorm:"type:varchar(200);not null"`
	IsSecurityAdmin bool       `json:"isSecurityAdmin" gorm:"not null;default:false"`
	Documents       []Document `json:"-" gorm:"foreignKey:OwnerID"`
}

func (User) TableName() string {
	return "users"
}
