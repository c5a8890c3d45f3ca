package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/websocket"
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// SetEventPublisher sets the event publisher for ledger change notifications
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// CategoryInput holds the writable fields of a category
type CategoryInput struct {
	Name  string
	Type  domain.CategoryType
	Color string
}

// validate trims the name and collects every field failure
func (in *CategoryInput) validate() error {
	var errs domain.ValidationErrors

	in.Name = strings.TrimSpace(in.Name)
	switch n := utf8.RuneCountInString(in.Name); {
	case n == 0:
		errs.Add("name", "Category name is required")
	case n < domain.MinCategoryNameLength:
		errs.Add("name", "Category name must be at least 2 characters")
	case n > domain.MaxCategoryNameLength:
		errs.Add("name", "Category name must be 100 characters or less")
	}
	if !in.Type.Valid() {
		errs.Add("type", "Invalid category type")
	}
	if !domain.ValidColor(in.Color) {
		errs.Add("color", "Invalid color format")
	}

	return errs.Err()
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(userID int32, input CategoryInput) (*domain.Category, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	if err := s.checkNameFree(userID, 0, input.Name); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.Create(&domain.Category{
		UserID: userID,
		Name:   input.Name,
		Type:   input.Type,
		Color:  input.Color,
	})
	if err != nil {
		return nil, err
	}

	s.publish(userID, websocket.CategoryCreated(category))
	return category, nil
}

// GetCategory retrieves a category by ID for a user
func (s *CategoryService) GetCategory(userID int32, id int32) (*domain.Category, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}
	return s.categoryRepo.GetByID(userID, id)
}

// ListCategories returns the user's categories with lifetime usage, ordered
// by type then name
func (s *CategoryService) ListCategories(userID int32) ([]*domain.CategoryWithStats, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}
	return s.categoryRepo.ListWithStats(userID)
}

// UpdateCategory replaces name, type and color. The type is locked while any
// transaction references the category.
func (s *CategoryService) UpdateCategory(userID int32, id int32, input CategoryInput) (*domain.Category, error) {
	if userID == 0 {
		return nil, domain.ErrUnauthorized
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.GetByID(userID, id); err != nil {
		return nil, err
	}
	if err := s.checkNameFree(userID, id, input.Name); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.Update(userID, id, domain.CategoryChange{
		Name:  input.Name,
		Type:  input.Type,
		Color: input.Color,
	})
	if err != nil {
		return nil, err
	}

	s.publish(userID, websocket.CategoryUpdated(category))
	return category, nil
}

// DeleteCategory removes a category that no transaction references
func (s *CategoryService) DeleteCategory(userID int32, id int32) error {
	if userID == 0 {
		return domain.ErrUnauthorized
	}
	if err := s.categoryRepo.Delete(userID, id); err != nil {
		return err
	}

	s.publish(userID, websocket.CategoryDeleted(map[string]int32{"id": id}))
	return nil
}

// CountTransactions returns how many transactions reference the category,
// so clients can warn before a delete or type change
func (s *CategoryService) CountTransactions(userID int32, id int32) (int64, error) {
	if userID == 0 {
		return 0, domain.ErrUnauthorized
	}
	if _, err := s.categoryRepo.GetByID(userID, id); err != nil {
		return 0, err
	}
	return s.categoryRepo.CountTransactions(userID, id)
}

// checkNameFree fails with ErrCategoryNameTaken when another category of the
// user already has name. The unique index remains the final arbiter.
func (s *CategoryService) checkNameFree(userID, id int32, name string) error {
	existing, err := s.categoryRepo.GetByName(userID, name)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != id {
		return domain.ErrCategoryNameTaken
	}
	return nil
}

func (s *CategoryService) publish(userID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}
