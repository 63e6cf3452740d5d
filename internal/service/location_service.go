package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chips520/wms-simple-version/internal/cache"
	"github.com/chips520/wms-simple-version/internal/models"
	"github.com/chips520/wms-simple-version/internal/repository"
)

// DefaultListLimit bounds list results when the caller does not supply one
const DefaultListLimit = 100

// ListQuery holds the filter criteria and pagination window for listing
// location records
type ListQuery struct {
	MaterialID *string
	TrayNumber *string
	Skip       int
	Limit      int
}

// LocationService defines the location record operations exposed to the API
type LocationService interface {
	Create(ctx context.Context, req *models.LocationCreate) (*models.MaterialLocation, error)
	Get(ctx context.Context, id int64) (*models.MaterialLocation, error)
	List(ctx context.Context, query ListQuery) ([]models.MaterialLocation, error)
	Update(ctx context.Context, id int64, update *models.LocationUpdate) (*models.MaterialLocation, error)
	Delete(ctx context.Context, id int64) error
	ClearByID(ctx context.Context, id int64) (*models.MaterialLocation, error)
	ClearByMaterialTray(ctx context.Context, materialID, trayNumber string) (*models.MaterialLocation, error)
	BatchUpdate(ctx context.Context, items []models.BatchUpdateItem) ([]models.MaterialLocation, error)
	BatchClear(ctx context.Context, ids []int64) ([]models.MaterialLocation, error)
}

// locationService implements LocationService
type locationService struct {
	repo     repository.LocationRepository
	cache    cache.RedisClient
	log      *logrus.Logger
	cacheTTL time.Duration
}

// NewLocationService creates a new location service. The cache client may be
// nil, in which case every read goes straight to the repository.
func NewLocationService(repo repository.LocationRepository, cacheClient cache.RedisClient, log *logrus.Logger) LocationService {
	return &locationService{
		repo:     repo,
		cache:    cacheClient,
		log:      log,
		cacheTTL: time.Hour,
	}
}

func locationKey(id int64) string {
	return fmt.Sprintf("location:%d", id)
}

// Create inserts a new location record. Missing optional fields are stored
// as NULL and never cause a failure.
func (s *locationService) Create(ctx context.Context, req *models.LocationCreate) (*models.MaterialLocation, error) {
	location := &models.MaterialLocation{
		MaterialID:  req.MaterialID,
		TrayNumber:  req.TrayNumber,
		ProcessID:   req.ProcessID,
		TaskID:      req.TaskID,
		StatusNotes: req.StatusNotes,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	s.cacheSet(ctx, location)
	return location, nil
}

// Get returns a location record, trying the cache first
func (s *locationService) Get(ctx context.Context, id int64) (*models.MaterialLocation, error) {
	if s.cache != nil {
		val, err := s.cache.Get(ctx, locationKey(id))
		if err == nil {
			var location models.MaterialLocation
			if jsonErr := json.Unmarshal([]byte(val), &location); jsonErr == nil {
				return &location, nil
			}
			s.log.WithField("id", id).Warn("Discarding malformed cache entry")
		} else if err != redis.Nil {
			s.log.WithError(err).Warn("Failed to get location from cache")
		}
	}

	location, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, location)
	return location, nil
}

// List returns records matching all supplied filters in insertion order
func (s *locationService) List(ctx context.Context, query ListQuery) ([]models.MaterialLocation, error) {
	limit := query.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	return s.repo.List(ctx, repository.ListFilter{
		MaterialID: query.MaterialID,
		TrayNumber: query.TrayNumber,
		Skip:       query.Skip,
		Limit:      limit,
	})
}

// Update applies a sparse update. An update carrying no fields is a no-op:
// it returns the current record and leaves the timestamp untouched. A
// non-empty update writes every provided field, explicit nulls included,
// and refreshes the timestamp even when the values are unchanged.
func (s *locationService) Update(ctx context.Context, id int64, update *models.LocationUpdate) (*models.MaterialLocation, error) {
	fields := update.Fields()
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	fields["timestamp"] = time.Now().UTC()
	location, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, id)
	return location, nil
}

// Delete hard-deletes a location record
func (s *locationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cacheInvalidate(ctx, id)
	return nil
}

// ClearByID empties the record's material ID while preserving every other
// field. Clearing always counts as a change, so the timestamp advances even
// when the material ID was already empty.
func (s *locationService) ClearByID(ctx context.Context, id int64) (*models.MaterialLocation, error) {
	location, err := s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"material_id": "",
		"timestamp":   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, id)
	return location, nil
}

// ClearByMaterialTray clears the record whose material ID and tray number
// both match. The lookup and the write are a single statement in the
// repository; duplicate matches resolve to the lowest ID.
func (s *locationService) ClearByMaterialTray(ctx context.Context, materialID, trayNumber string) (*models.MaterialLocation, error) {
	location, err := s.repo.ClearByMaterialTray(ctx, materialID, trayNumber, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, location.ID)
	return location, nil
}

// BatchUpdate applies each update independently and sequentially. Entries
// referencing nonexistent IDs are skipped, not reported; transient store
// errors abort the batch and surface to the caller.
func (s *locationService) BatchUpdate(ctx context.Context, items []models.BatchUpdateItem) ([]models.MaterialLocation, error) {
	updated := make([]models.MaterialLocation, 0, len(items))
	for _, item := range items {
		location, err := s.Update(ctx, item.LocationID, &item.Data)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.WithField("id", item.LocationID).Warn("Skipping missing location in batch update")
				continue
			}
			return nil, err
		}
		updated = append(updated, *location)
	}
	return updated, nil
}

// BatchClear clears each ID independently with the same best-effort
// semantics as BatchUpdate
func (s *locationService) BatchClear(ctx context.Context, ids []int64) ([]models.MaterialLocation, error) {
	cleared := make([]models.MaterialLocation, 0, len(ids))
	for _, id := range ids {
		location, err := s.ClearByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.WithField("id", id).Warn("Skipping missing location in batch clear")
				continue
			}
			return nil, err
		}
		cleared = append(cleared, *location)
	}
	return cleared, nil
}

func (s *locationService) cacheSet(ctx context.Context, location *models.MaterialLocation) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(location)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, locationKey(location.ID), string(data), s.cacheTTL); err != nil {
		s.log.WithError(err).Warn("Failed to cache location")
	}
}

func (s *locationService) cacheInvalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, locationKey(id)); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate cached location")
	}
}
