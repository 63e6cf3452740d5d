package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/chips520/wms-simple-version/internal/models"
)

// ListFilter holds the optional equality filters and pagination window for
// listing location records. Nil filter fields mean "no filter"; a pointer to
// an empty string matches cleared records.
type ListFilter struct {
	MaterialID *string
	TrayNumber *string
	Skip       int
	Limit      int
}

// LocationRepository defines the interface for location record persistence
type LocationRepository interface {
	Create(ctx context.Context, location *models.MaterialLocation) error
	GetByID(ctx context.Context, id int64) (*models.MaterialLocation, error)
	List(ctx context.Context, filter ListFilter) ([]models.MaterialLocation, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (*models.MaterialLocation, error)
	Delete(ctx context.Context, id int64) error
	ClearByMaterialTray(ctx context.Context, materialID, trayNumber string, now time.Time) (*models.MaterialLocation, error)
}

// locationRepository implements LocationRepository over GORM
type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

// Create inserts a new location record and assigns its ID
func (r *locationRepository) Create(ctx context.Context, location *models.MaterialLocation) error {
	if err := r.db.WithContext(ctx).Create(location).Error; err != nil {
		return errors.Wrap(err, "failed to create location")
	}
	return nil
}

// GetByID gets a location record by ID
func (r *locationRepository) GetByID(ctx context.Context, id int64) (*models.MaterialLocation, error) {
	var location models.MaterialLocation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get location")
	}
	return &location, nil
}

// List returns records matching all supplied filters, in insertion order
// (ascending ID) so pagination stays deterministic.
func (r *locationRepository) List(ctx context.Context, filter ListFilter) ([]models.MaterialLocation, error) {
	query := r.db.WithContext(ctx).Model(&models.MaterialLocation{})

	if filter.MaterialID != nil {
		query = query.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.TrayNumber != nil {
		query = query.Where("tray_number = ?", *filter.TrayNumber)
	}

	var locations []models.MaterialLocation
	err := query.
		Order("id").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&locations).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list locations")
	}
	return locations, nil
}

// UpdateFields writes the supplied columns in a single statement and returns
// the re-read record. The caller decides which columns change, including the
// timestamp; an empty map must not reach this method.
func (r *locationRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (*models.MaterialLocation, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MaterialLocation{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to update location")
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete hard-deletes a location record
func (r *locationRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.MaterialLocation{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete location")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearByMaterialTray empties the material ID of the record matching both
// criteria in one statement, so a concurrent update cannot slip between the
// lookup and the write. When duplicates exist the lowest ID wins.
func (r *locationRepository) ClearByMaterialTray(ctx context.Context, materialID, trayNumber string, now time.Time) (*models.MaterialLocation, error) {
	var location models.MaterialLocation
	result := r.db.WithContext(ctx).Raw(`
		UPDATE material_locations
		SET material_id = '', timestamp = ?
		WHERE id = (
			SELECT id FROM material_locations
			WHERE material_id = ? AND tray_number = ?
			ORDER BY id
			LIMIT 1
		)
		RETURNING id, material_id, tray_number, process_id, task_id, status_notes, timestamp`,
		now, materialID, trayNumber,
	).Scan(&location)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to clear location by material and tray")
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &location, nil
}
