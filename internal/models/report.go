package models

import (
	"time"

	"gorm.io/gorm"
)

// Report is one employee's daily report. EmployeeCode is always set from the
// authenticated caller, never from form input. At most one non-deleted report
// may exist per (ReportDate, EmployeeCode); the services enforce this inside
// a transaction and a partial unique index backstops it under concurrency.
type Report struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EmployeeCode string    `gorm:"size:10;not null;index:idx_reports_date_employee" json:"employee_code"`
	Employee     Employee  `gorm:"foreignKey:EmployeeCode;references:Code" json:"-"`
	ReportDate   time.Time `gorm:"not null;index:idx_reports_date_employee" json:"report_date"`
	Title        string    `gorm:"size:100;not null" json:"title"`
	Content      string    `gorm:"size:600;not null" json:"content"`
	DeleteFlg    bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NotDeleted is the soft-delete predicate every read goes through. Queries
// that skip it (none in the services) would resurrect logically removed rows.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("delete_flg = ?", false)
}
