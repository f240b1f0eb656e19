// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/gnos-os/gnos/internal/validation"
	"github.com/gnos-os/gnos/internal/vfs/domain"
)

// IssueTokenRequest contains the parameters for issuing a capability token.
type IssueTokenRequest struct {
	PathScope   string   `json:"path_scope"`
	Permissions []string `json:"permissions"`
	TTLSeconds  int64    `json:"ttl_seconds"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PathScope,
			validation.Required,
			customValidation.NotBlank,
			customValidation.AbsolutePath,
			validation.Length(1, 500),
		),
		validation.Field(&r.Permissions,
			validation.Each(validation.By(validatePermission)),
		),
		validation.Field(&r.TTLSeconds,
			validation.Required,
			validation.Min(1),
		),
	)
}

// validatePermission validates a single permission name.
func validatePermission(value interface{}) error {
	name, ok := value.(string)
	if !ok {
		return validation.NewError("validation_permission_type", "must be a string")
	}
	if _, err := domain.ParsePermission(name); err != nil {
		return validation.NewError("validation_permission_value", "must be one of read, write, list")
	}
	return nil
}
