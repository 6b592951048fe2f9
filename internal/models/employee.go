package models

import "time"

// Employee roles. The original system distinguishes only administrators
// (account management) from general staff (own reports only).
const (
	RoleAdmin   = "admin"
	RoleGeneral = "general"
)

// Employee account. Code is the natural primary key and never changes after
// creation. Password always holds a bcrypt hash; plaintext never reaches the
// store. Soft-deleted rows keep their code so historical reports stay
// referentially intact.
type Employee struct {
	Code      string    `gorm:"primaryKey;size:10" json:"code"`
	Name      string    `gorm:"size:20;not null" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:10;not null" json:"role"`
	DeleteFlg bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Employee) IsAdmin() bool { return e.Role == RoleAdmin }
