package esign

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/signbridge/internal/zohosign"
)

// Fixed placement of every field on the first page.
const (
	fieldWidth  = "200"
	fieldHeight = "18"
	fieldX      = "30"
	fieldY      = "30"
	fieldPage   = 0
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TagSelector is a field type the caller wants placed on the document.
type TagSelector struct {
	FieldTypeName string `json:"field_type_name" validate:"required"`
	FieldCategory string `json:"field_category" validate:"required"`
	IsMandatory   bool   `json:"is_mandatory"`
}

// ParseTagSelectors decodes the JSON-encoded array sent in the "tags" form field.
func ParseTagSelectors(raw string) ([]TagSelector, error) {
	var tags []TagSelector
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTags, err)
	}
	if err := validateTags(tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func validateTags(tags []TagSelector) error {
	if len(tags) == 0 {
		return fmt.Errorf("%w: at least one tag is required", ErrInvalidTags)
	}
	for i, tag := range tags {
		if err := validate.Struct(tag); err != nil {
			return fmt.Errorf("%w: tag %d: %w", ErrInvalidTags, i, err)
		}
	}
	return nil
}

// BuildFieldPlacements binds each selected tag to documentID at the fixed position.
func BuildFieldPlacements(tags []TagSelector, documentID string) []zohosign.Field {
	fields := make([]zohosign.Field, 0, len(tags))
	for _, tag := range tags {
		fields = append(fields, zohosign.Field{
			DocumentID:    documentID,
			FieldName:     tag.FieldTypeName,
			FieldTypeName: tag.FieldTypeName,
			FieldLabel:    tag.FieldTypeName + " - 1",
			FieldCategory: tag.FieldCategory,
			AbsWidth:      fieldWidth,
			AbsHeight:     fieldHeight,
			IsMandatory:   tag.IsMandatory,
			XCoord:        fieldX,
			YCoord:        fieldY,
			PageNo:        fieldPage,
		})
	}
	return fields
}
