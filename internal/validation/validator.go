package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/voxo-cms/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

const (
	MinRating = 0.0
	MaxRating = 10.0
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is a list of validation failures for one record
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, ve := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", ve.Field, ve.Message))
	}
	return strings.Join(parts, "; ")
}

// Validator provides validation methods
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePost validates a post before it is written. Slug must already be resolved.
func (v *Validator) ValidatePost(post *models.PostInput) Errors {
	var errors Errors

	if strings.TrimSpace(post.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	}

	errors = append(errors, v.validateSlug(post.Slug)...)

	if post.CategoryID != "" && !IsValidUUID(post.CategoryID) {
		errors = append(errors, ValidationError{Field: "category_id", Message: "invalid UUID format", Value: post.CategoryID})
	}

	if post.Rating != nil && (*post.Rating < MinRating || *post.Rating > MaxRating) {
		errors = append(errors, ValidationError{
			Field:   "rating",
			Message: fmt.Sprintf("rating must be between %.0f and %.0f", MinRating, MaxRating),
			Value:   *post.Rating,
		})
	}

	return errors
}

// ValidateCategory validates a category record
func (v *Validator) ValidateCategory(category *models.CategoryInput) Errors {
	var errors Errors

	if strings.TrimSpace(category.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}
	errors = append(errors, v.validateSlug(category.Slug)...)

	return errors
}

// ValidateTag validates a tag record
func (v *Validator) ValidateTag(tag *models.TagInput) Errors {
	var errors Errors

	if strings.TrimSpace(tag.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}
	errors = append(errors, v.validateSlug(tag.Slug)...)

	if tag.MenuOrder < 0 {
		errors = append(errors, ValidationError{Field: "menu_order", Message: "menu_order must not be negative", Value: tag.MenuOrder})
	}

	return errors
}

// ValidateEmail validates a subscriber email address
func (v *Validator) ValidateEmail(email string) Errors {
	if email == "" {
		return Errors{{Field: "email", Message: "email is required"}}
	}
	if !emailRegex.MatchString(email) {
		return Errors{{Field: "email", Message: "invalid email format", Value: email}}
	}
	return nil
}

// ValidateBroadcast validates a newsletter broadcast request
func (v *Validator) ValidateBroadcast(req *models.BroadcastRequest) Errors {
	var errors Errors

	if strings.TrimSpace(req.Subject) == "" {
		errors = append(errors, ValidationError{Field: "subject", Message: "subject is required"})
	}
	if strings.TrimSpace(req.BodyHTML) == "" {
		errors = append(errors, ValidationError{Field: "body_html", Message: "body_html is required"})
	}

	return errors
}

// ValidateSettingKey validates a site setting key
func (v *Validator) ValidateSettingKey(key string) Errors {
	if strings.TrimSpace(key) == "" {
		return Errors{{Field: "key", Message: "key is required"}}
	}
	return nil
}

func (v *Validator) validateSlug(slug string) Errors {
	if slug == "" {
		return Errors{{Field: "slug", Message: "slug is required"}}
	}
	if !slugRegex.MatchString(slug) {
		return Errors{{Field: "slug", Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)", Value: slug}}
	}
	return nil
}

// IsValidUUID reports whether s parses as a UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
