package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tkhr-dev/nippo/internal/errkind"
	"github.com/tkhr-dev/nippo/internal/models"
)

type ReportService struct{ DB *gorm.DB }

func NewReportService(db *gorm.DB) *ReportService { return &ReportService{DB: db} }

type ReportInput struct {
	ReportDate time.Time
	Title      string
	Content    string
}

// dateOnly normalizes a timestamp to midnight UTC so the per-day uniqueness
// comparison is an exact equality.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Save creates a report owned by the acting employee. The owner is always
// taken from acting, never from request input. At most one active report per
// (date, employee); the check and the insert share one transaction, with the
// partial unique index as the backstop under concurrent submissions.
func (s *ReportService) Save(in ReportInput, acting *models.Employee) (*models.Report, error) {
	date := dateOnly(in.ReportDate)
	now := time.Now()
	r := models.Report{
		EmployeeCode: acting.Code,
		ReportDate:   date,
		Title:        in.Title,
		Content:      in.Content,
		DeleteFlg:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Report{}).Scopes(models.NotDeleted).
			Where("report_date = ? AND employee_code = ?", date, acting.Code).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errkind.New(errkind.KindDateCheck, "report already exists for this date")
		}
		return tx.Create(&r).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errkind.New(errkind.KindDateCheck, "report already exists for this date")
		}
		return nil, err
	}
	return &r, nil
}

// Update rewrites date, title and content of an existing report. The
// uniqueness check excludes the report itself, so saving with an unchanged
// date never self-conflicts. Non-admins can only touch their own reports;
// anything else reads as not found.
func (s *ReportService) Update(id uint, in ReportInput, acting *models.Employee) (*models.Report, error) {
	date := dateOnly(in.ReportDate)
	var r models.Report
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(models.NotDeleted).First(&r, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errkind.New(errkind.KindNotFound, "report not found")
			}
			return err
		}
		if acting != nil && !acting.IsAdmin() && r.EmployeeCode != acting.Code {
			return errkind.New(errkind.KindNotFound, "report not found")
		}
		var count int64
		if err := tx.Model(&models.Report{}).Scopes(models.NotDeleted).
			Where("report_date = ? AND employee_code = ? AND id <> ?", date, r.EmployeeCode, r.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errkind.New(errkind.KindDateCheck, "report already exists for this date")
		}
		r.ReportDate = date
		r.Title = in.Title
		r.Content = in.Content
		r.UpdatedAt = time.Now()
		return tx.Save(&r).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errkind.New(errkind.KindDateCheck, "report already exists for this date")
		}
		return nil, err
	}
	return &r, nil
}

// Delete soft-deletes a report. The flagged row is written back inside the
// transaction; flipping it in memory alone would commit nothing.
func (s *ReportService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var r models.Report
		if err := tx.Scopes(models.NotDeleted).First(&r, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errkind.New(errkind.KindNotFound, "report not found")
			}
			return err
		}
		r.DeleteFlg = true
		r.UpdatedAt = time.Now()
		return tx.Save(&r).Error
	})
}

func (s *ReportService) FindAll() ([]models.Report, error) {
	var list []models.Report
	if err := s.DB.Scopes(models.NotDeleted).Preload("Employee").
		Order("report_date desc, id desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ReportService) FindByID(id uint) (*models.Report, error) {
	var r models.Report
	if err := s.DB.Scopes(models.NotDeleted).Preload("Employee").First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errkind.New(errkind.KindNotFound, "report not found")
		}
		return nil, err
	}
	return &r, nil
}

// FindByEmployee lists the active reports owned by one employee.
func (s *ReportService) FindByEmployee(code string) ([]models.Report, error) {
	var list []models.Report
	if err := s.DB.Scopes(models.NotDeleted).Where("employee_code = ?", code).
		Order("report_date desc, id desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
