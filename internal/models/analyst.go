package models

// Analyst is an assignable worker identity. Managed outside this service;
// the portal only reads it when assigning requests.
type Analyst struct {
	BaseModel
	Name   string `json:"name" gorm:"type:varchar(100);not null"`
	Email  string `json:"email" gorm:"type:varchar(255);not null"`
	Active bool   `json:"active" gorm:"not null;default:true"`
}
