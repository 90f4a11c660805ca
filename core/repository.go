package core

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crewtrack.in/crewtrack/model"
)

// GORM-backed repositories. Each method borrows the shared pool through the
// DatabaseManager so the handlers never touch gorm directly.

type GormAttendanceRepository struct {
	Dm *DatabaseManager
}

func NewGormAttendanceRepository(dm *DatabaseManager) *GormAttendanceRepository {
	return &GormAttendanceRepository{Dm: dm}
}

func (r *GormAttendanceRepository) Find(ctx context.Context, employeeID, date string) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.Dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("employee_id = ? AND date = ?", employeeID, date).First(&rec).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormAttendanceRepository) Insert(ctx context.Context, rec *model.AttendanceRecord) (bool, error) {
	created := false
	err := r.Dm.Exec(ctx, func(db *gorm.DB) error {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "date"}},
			DoNothing: true,
		}).Create(rec)
		if result.Error != nil {
			return result.Error
		}
		created = result.RowsAffected > 0
		return nil
	})
	return created, err
}

func (r *GormAttendanceRepository) Update(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.Dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Save(rec).Error
	})
}

func (r *GormAttendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.Dm.Exec(ctx, func(db *gorm.DB) error {
		q := db.Model(&model.AttendanceRecord{})
		if filter.Date != "" {
			q = q.Where("date = ?", filter.Date)
		}
		if filter.EmployeeID != "" {
			q = q.Where("employee_id = ?", filter.EmployeeID)
		}
		limit := filter.Limit
		if limit <= 0 {
			limit = 1000
		}
		return q.Order("date, employee_id").Limit(limit).Find(&records).Error
	})
	return records, err
}

func (r *GormAttendanceRepository) ClearPhoto(ctx context.Context, employeeID, date string) error {
	return r.Dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Model(&model.AttendanceRecord{}).
			Where("employee_id = ? AND date = ?", employeeID, date).
			Update("photo_reference", nil).Error
	})
}

type GormUserRepository struct {
	Dm *DatabaseManager
}

func NewGormUserRepository(dm *DatabaseManager) *GormUserRepository {
	return &GormUserRepository{Dm: dm}
}

func (r *GormUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	var user model.User
	err := r.Dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.Dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("id = ?", id).First(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	return r.Dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Create(user).Error
	})
}

func (r *GormUserRepository) Save(ctx context.Context, user *model.User) error {
	return r.Dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Save(user).Error
	})
}

type GormSiteRepository struct {
	Dm *DatabaseManager
}

func NewGormSiteRepository(dm *DatabaseManager) *GormSiteRepository {
	return &GormSiteRepository{Dm: dm}
}

func (r *GormSiteRepository) FindByUsername(ctx context.Context, username string) (*model.Site, error) {
	var site model.Site
	err := r.Dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("LOWER(username) = ?", strings.ToLower(username)).First(&site).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *GormSiteRepository) FindByID(ctx context.Context, id uint) (*model.Site, error) {
	var site model.Site
	err := r.Dm.Exec(ctx, func(db *gorm.DB) error {
		return db.First(&site, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *GormSiteRepository) ListEmployees(ctx context.Context, siteID uint) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.Dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("site_id = ?", siteID).Order("id").Find(&employees).Error
	})
	return employees, err
}
