// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package validation holds pure input checks. Every function returns either the
// normalized value or a *types.ValidationError keyed by field name.
package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/inventory-identity/internal/types"
)

const (
	// DefaultPasswordMinLength is also the floor for the configured minimum.
	DefaultPasswordMinLength = 12
	// bcrypt ignores everything past 72 bytes.
	passwordMaxBytes = 72
)

var slugRegexp = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := types.ParseRole(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegexp.MatchString(fl.Field().String())
	})

	v.RegisterStructValidation(principalTenantRule, types.PrincipalAttrs{})

	return v
}

// principalTenantRule enforces root-admin <=> no tenant.
func principalTenantRule(sl validator.StructLevel) {
	attrs := sl.Current().Interface().(types.PrincipalAttrs)

	role := types.Role(strings.TrimSpace(attrs.Role))
	tenant := strings.TrimSpace(attrs.TenantID)

	switch {
	case role == types.RoleRootAdmin && tenant != "":
		sl.ReportError(attrs.TenantID, "tenant_id", "TenantID", "root_admin_no_tenant", "")
	case role != types.RoleRootAdmin && role.Valid() && tenant == "":
		sl.ReportError(attrs.TenantID, "tenant_id", "TenantID", "tenant_required", "")
	}
}

var reasons = map[string]string{
	"required":             "is required",
	"email":                "must be a valid email address",
	"max":                  "is too long",
	"role":                 "must be one of root-admin, tenant-admin, operator, viewer",
	"slug":                 "must contain lowercase letters, digits and dashes only",
	"root_admin_no_tenant": "must be empty for root-admin",
	"tenant_required":      "is required for this role",
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := types.NewValidationError()
	for _, fe := range verrs {
		reason, ok := reasons[fe.Tag()]
		if !ok {
			reason = "is invalid"
		}
		out.Add(jsonName(fe.StructField()), reason)
	}

	return out.OrNil()
}

func jsonName(field string) string {
	switch field {
	case "TenantID":
		return "tenant_id"
	case "ContactEmail":
		return "contact_email"
	case "ContactPhone":
		return "contact_phone"
	}
	return strings.ToLower(field)
}

// NormalizeEmail lower-cases and trims, uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatedPrincipal is the output of Principal.
type ValidatedPrincipal struct {
	Email    string
	Password string
	Role     types.Role
	TenantID string
}

// Principal validates attributes for a new principal. A password is optional,
// passwordless accounts sign in through magic links.
func Principal(attrs types.PrincipalAttrs, minPasswordLength int) (*ValidatedPrincipal, error) {
	attrs.Email = NormalizeEmail(attrs.Email)
	attrs.Role = strings.TrimSpace(attrs.Role)
	attrs.TenantID = strings.TrimSpace(attrs.TenantID)

	verr := types.NewValidationError()

	if err := validate.Struct(attrs); err != nil {
		if e, ok := toValidationError(err).(*types.ValidationError); ok {
			verr = e
		} else {
			return nil, err
		}
	}

	if attrs.Password != "" {
		for _, reason := range passwordReasons(attrs.Password, minPasswordLength) {
			verr.Add("password", reason)
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &ValidatedPrincipal{
		Email:    attrs.Email,
		Password: attrs.Password,
		Role:     types.Role(attrs.Role),
		TenantID: attrs.TenantID,
	}, nil
}

// Password checks a new password against its confirmation.
func Password(password, confirmation string, minLength int) (string, error) {
	verr := types.NewValidationError()

	for _, reason := range passwordReasons(password, minLength) {
		verr.Add("password", reason)
	}
	if password != confirmation {
		verr.Add("password_confirmation", "does not match password")
	}

	if err := verr.OrNil(); err != nil {
		return "", err
	}

	return password, nil
}

func passwordReasons(password string, minLength int) []string {
	if minLength < DefaultPasswordMinLength {
		minLength = DefaultPasswordMinLength
	}

	var out []string
	if utf8.RuneCountInString(password) < minLength {
		out = append(out, "should be at least "+strconv.Itoa(minLength)+" characters")
	}
	if len(password) > passwordMaxBytes {
		out = append(out, "should be at most 72 bytes")
	}
	return out
}

// Tenant validates tenant creation attributes.
func Tenant(attrs types.TenantAttrs) (*types.TenantAttrs, error) {
	attrs.Name = strings.TrimSpace(attrs.Name)
	attrs.Slug = strings.ToLower(strings.TrimSpace(attrs.Slug))
	attrs.ContactEmail = NormalizeEmail(attrs.ContactEmail)

	if err := validate.Struct(attrs); err != nil {
		return nil, toValidationError(err)
	}

	return &attrs, nil
}

// InvitationRole parses and restricts the role offered in an invitation.
func InvitationRole(role string) (types.Role, error) {
	r, err := types.ParseRole(role)
	if err != nil || !r.Invitable() {
		verr := types.NewValidationError()
		verr.Add("role", "must be operator or viewer")
		return "", verr
	}
	return r, nil
}

// Email validates a single address.
func Email(email string) (string, error) {
	email = NormalizeEmail(email)
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		verr := types.NewValidationError()
		verr.Add("email", reasons["email"])
		return "", verr
	}
	return email, nil
}
