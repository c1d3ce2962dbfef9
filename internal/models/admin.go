package models

// Admin is an authorized administrative identity. Admins are provisioned
// out-of-band (seed or ops tooling) and deactivated by clearing Active;
// the API never hard-deletes them.
type Admin struct {
	BaseModel
	Email  string `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name   string `json:"name" gorm:"type:varchar(100);not null"`
	Active bool   `json:"active" gorm:"not null;default:true"`
}
