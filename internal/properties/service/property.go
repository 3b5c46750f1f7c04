package service

import (
	"context"
	"errors"
	"sync"

	propertieserrors "smartstay/internal/properties/errors"
	"smartstay/internal/properties/repository"
	"smartstay/internal/properties/validator"
	"smartstay/pkg/config"
	apperrors "smartstay/pkg/errors"
	"smartstay/pkg/model"
	"smartstay/pkg/sanitizer"
)

type PropertyService interface {
	Create(ctx context.Context, actor model.Actor, property *model.Property) error
	GetByID(ctx context.Context, id string) (*model.Property, error)
	List(ctx context.Context, city string, limit int, offset int64) ([]*model.Property, int64, error)
	ListByHost(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Property, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, updates *model.PropertyUpdate) (*model.Property, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type propertyService struct {
	repo      repository.PropertyRepository
	validator *validator.PropertyValidator
	cfg       *config.Config
}

func NewPropertyService(
	repo repository.PropertyRepository,
	propertyValidator *validator.PropertyValidator,
	cfg *config.Config,
) PropertyService {
	return &propertyService{
		repo:      repo,
		validator: propertyValidator,
		cfg:       cfg,
	}
}

func (s *propertyService) Create(ctx context.Context, actor model.Actor, property *model.Property) error {
	if actor.Role != model.RoleHost && !actor.IsAdmin() {
		return apperrors.Forbidden("Only hosts can list properties")
	}

	// Hosts always own what they create. Admins may list on behalf of a
	// host by supplying the host reference explicitly.
	if !actor.IsAdmin() || property.HostID == "" {
		property.HostID = actor.ID
		property.HostEmail = actor.Email
	}

	s.sanitize(property)
	if err := s.validate(property); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.cfg.Log.Error("Failed to create property", "host_id", property.HostID, "error", err)
		return apperrors.Internal("Failed to create property", err)
	}

	s.cfg.Log.Info("Property created successfully",
		"id", property.ID,
		"host_id", property.HostID,
		"city", property.City,
	)
	return nil
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		if errors.Is(err, propertieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid property ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve property", err)
	}

	return property, nil
}

func (s *propertyService) List(ctx context.Context, city string, limit int, offset int64) ([]*model.Property, int64, error) {
	city = sanitizer.SanitizeCityOrAmenity(city)

	var count int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, city)
		if err != nil {
			s.cfg.Log.Error("Failed to count properties", "error", err)
			errCount = apperrors.Internal("Failed to count properties", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		properties, err = s.repo.FindAll(ctx, city, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list properties", "error", err)
			errFind = apperrors.Internal("Failed to retrieve properties", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return properties, count, nil
}

func (s *propertyService) ListByHost(ctx context.Context, hostID string, limit int, offset int64) ([]*model.Property, int64, error) {
	if hostID == "" {
		return nil, 0, apperrors.InvalidInput("Host ID cannot be empty")
	}

	var count int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByHost(ctx, hostID)
		if err != nil {
			s.cfg.Log.Error("Failed to count host properties", "host_id", hostID, "error", err)
			errCount = apperrors.Internal("Failed to count properties", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		properties, err = s.repo.FindByHost(ctx, hostID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list host properties", "host_id", hostID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve properties", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return properties, count, nil
}

func (s *propertyService) Update(ctx context.Context, actor model.Actor, id string, updates *model.PropertyUpdate) (*model.Property, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeOwner(actor, existing); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Property update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergePropertyUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		s.cfg.Log.Error("Failed to update property", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update property", err)
	}

	s.cfg.Log.Info("Property updated successfully", "id", id)
	return merged, nil
}

func (s *propertyService) Delete(ctx context.Context, actor model.Actor, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorizeOwner(actor, existing); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Property", id)
		}
		return apperrors.Internal("Failed to delete property", err)
	}

	s.cfg.Log.Info("Property deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *propertyService) authorizeOwner(actor model.Actor, property *model.Property) error {
	if actor.IsAdmin() {
		return nil
	}
	if property.HostID != actor.ID {
		return apperrors.Forbidden("Only the listing host can modify this property")
	}
	return nil
}

func (s *propertyService) sanitize(p *model.Property) {
	p.Title = sanitizer.SanitizeFreeText(p.Title)
	p.Description = sanitizer.SanitizeFreeText(p.Description)
	p.Category = sanitizer.SanitizeCityOrAmenity(p.Category)
	p.Address = sanitizer.SanitizeFreeText(p.Address)
	p.City = sanitizer.SanitizeCityOrAmenity(p.City)
	p.Country = sanitizer.SanitizeCityOrAmenity(p.Country)
	p.Amenities = sanitizer.SanitizeSlice(p.Amenities, sanitizer.SanitizeCityOrAmenity)
	p.ImageURLs = sanitizer.SanitizeURLSlice(p.ImageURLs)
}

func (s *propertyService) mergePropertyUpdates(existing *model.Property, updates *model.PropertyUpdate) *model.Property {
	merged := *existing

	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Category != "" {
		merged.Category = updates.Category
	}
	if updates.Address != "" {
		merged.Address = updates.Address
	}
	if updates.City != "" {
		merged.City = updates.City
	}
	if updates.Country != "" {
		merged.Country = updates.Country
	}
	if updates.PricePerNight != nil {
		merged.PricePerNight = *updates.PricePerNight
	}
	if updates.Bedrooms != nil {
		merged.Bedrooms = *updates.Bedrooms
	}
	if updates.Bathrooms != nil {
		merged.Bathrooms = *updates.Bathrooms
	}
	if updates.MaxGuests != nil {
		merged.MaxGuests = *updates.MaxGuests
	}
	if updates.Amenities != nil {
		merged.Amenities = *updates.Amenities
	}
	if updates.ImageURLs != nil {
		merged.ImageURLs = *updates.ImageURLs
	}

	return &merged
}

func (s *propertyService) validate(property *model.Property) error {
	if err := s.validator.Validate(property); err != nil {
		s.cfg.Log.Warn("Property validation failed", "error", err)
		return apperrors.Validation("Property validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
