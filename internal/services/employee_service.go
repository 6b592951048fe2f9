package services

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tkhr-dev/nippo/internal/errkind"
	"github.com/tkhr-dev/nippo/internal/models"
	"github.com/tkhr-dev/nippo/validation"
)

type EmployeeService struct{ DB *gorm.DB }

func NewEmployeeService(db *gorm.DB) *EmployeeService { return &EmployeeService{DB: db} }

type EmployeeInput struct {
	Code     string
	Name     string
	Password string // plaintext, hashed before persisting
	Role     string
}

// EmployeeUpdate carries the mutable fields. An empty Password means "leave
// the current hash unchanged"; Code is immutable and absent on purpose.
type EmployeeUpdate struct {
	Name     string
	Password string
	Role     string
}

// Save registers a new employee. The code must be unused among active rows;
// a code held by a soft-deleted employee is also rejected, surfaced through
// the primary-key violation at insert time.
func (s *EmployeeService) Save(in EmployeeInput) (*models.Employee, error) {
	v := validation.Violations{}
	validation.Password("password", in.Password, true, v)
	if err := v.First(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	e := models.Employee{
		Code:      in.Code,
		Name:      in.Name,
		Password:  string(hash),
		Role:      in.Role,
		DeleteFlg: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Employee{}).Scopes(models.NotDeleted).
			Where("code = ?", in.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errkind.New(errkind.KindDuplicate, "employee code already in use")
		}
		return tx.Create(&e).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errkind.New(errkind.KindDuplicate, "employee code already in use")
		}
		return nil, err
	}
	return &e, nil
}

// Update rewrites the mutable fields of an existing employee. The password
// is re-validated and re-hashed only when a new plaintext was supplied.
func (s *EmployeeService) Update(code string, in EmployeeUpdate) (*models.Employee, error) {
	v := validation.Violations{}
	validation.Password("password", in.Password, false, v)
	if err := v.First(); err != nil {
		return nil, err
	}
	var e models.Employee
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(models.NotDeleted).Where("code = ?", code).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errkind.New(errkind.KindNotFound, "employee not found")
			}
			return err
		}
		e.Name = in.Name
		e.Role = in.Role
		if in.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			e.Password = string(hash)
		}
		e.UpdatedAt = time.Now()
		return tx.Save(&e).Error
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete soft-deletes an employee. Administrators may not remove their own
// account; the store has no such constraint, so it is enforced here.
func (s *EmployeeService) Delete(code string, acting *models.Employee) error {
	if acting != nil && acting.Code == code {
		return errkind.New(errkind.KindSelfDelete, "cannot delete own account")
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var e models.Employee
		if err := tx.Scopes(models.NotDeleted).Where("code = ?", code).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errkind.New(errkind.KindNotFound, "employee not found")
			}
			return err
		}
		e.DeleteFlg = true
		e.UpdatedAt = time.Now()
		return tx.Save(&e).Error
	})
}

// FindByCode returns the active employee with the given code. A missing or
// soft-deleted code yields a not_found kind, never a nil pair.
func (s *EmployeeService) FindByCode(code string) (*models.Employee, error) {
	var e models.Employee
	if err := s.DB.Scopes(models.NotDeleted).Where("code = ?", code).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errkind.New(errkind.KindNotFound, "employee not found")
		}
		return nil, err
	}
	return &e, nil
}

func (s *EmployeeService) FindAll() ([]models.Employee, error) {
	var list []models.Employee
	if err := s.DB.Scopes(models.NotDeleted).Order("code asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// isUniqueViolation recognizes a store-enforced uniqueness breach: SQLSTATE
// 23505 on postgres, the UNIQUE constraint message on sqlite (tests).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
