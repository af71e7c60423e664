package session

import (
	"encoding/json"
	"strings"

	"github.com/reserveja/reserveja-cli/internal/errors"
)

// GlobalRole is a cross-tenant platform role
type GlobalRole string

// GlobalRoleSuperAdmin grants access to the super-admin back-office
const GlobalRoleSuperAdmin GlobalRole = "super_admin"

// CompanyRole is a permission level within one company
type CompanyRole string

const (
	// RoleAdmin manages the company and its operators
	RoleAdmin CompanyRole = "admin"
	// RoleAttendant runs the front desk: appointments and clients
	RoleAttendant CompanyRole = "attendant"
	// RoleProfessional sees their own agenda
	RoleProfessional CompanyRole = "professional"
	// RoleReadOnly can only view, and is the fail-safe default
	RoleReadOnly CompanyRole = "read_only"
)

// CompanyMembership ties a user to one company with a role
type CompanyMembership struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role CompanyRole `json:"role"`
}

// User is the authenticated identity. It is immutable once constructed from
// a login response and replaced wholesale on the next login.
type User struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	GlobalRole GlobalRole          `json:"role_global,omitempty"`
	Companies  []CompanyMembership `json:"companies,omitempty"`
}

// userPayload is the raw user object from the login response.
type userPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	GlobalRole string `json:"role_global"`
	Companies  []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"companies"`
}

// NormalizeRole maps a server-provided role string to a CompanyRole.
// Matching is case-insensitive on substrings, first match wins; anything
// unrecognized degrades to read_only, never to an error.
func NormalizeRole(role string) CompanyRole {
	value := strings.ToLower(role)
	switch {
	case strings.Contains(value, "admin"):
		return RoleAdmin
	case strings.Contains(value, "atend"), strings.Contains(value, "attendant"):
		return RoleAttendant
	case strings.Contains(value, "prof"):
		return RoleProfessional
	case strings.Contains(value, "read"), strings.Contains(value, "leitura"), strings.Contains(value, "viewer"):
		return RoleReadOnly
	default:
		return RoleReadOnly
	}
}

// DecodeUser maps the raw login user object into the typed User shape,
// applying the membership role normalization.
func DecodeUser(raw json.RawMessage) (*User, error) {
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrCodeAuthIncomplete, "login response missing user")
	}

	var payload userPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode user payload", err)
	}
	if payload.ID == "" {
		return nil, errors.New(errors.ErrCodeAPIDecode, "user payload missing id")
	}

	name := payload.Name
	if name == "" {
		name = payload.Email
	}

	globalRole := GlobalRole("")
	if payload.GlobalRole == string(GlobalRoleSuperAdmin) {
		globalRole = GlobalRoleSuperAdmin
	}

	user := &User{
		ID:         payload.ID,
		Name:       name,
		Email:      payload.Email,
		GlobalRole: globalRole,
	}
	for _, company := range payload.Companies {
		user.Companies = append(user.Companies, CompanyMembership{
			ID:   company.ID,
			Name: company.Name,
			Role: NormalizeRole(company.Role),
		})
	}

	return user, nil
}

// Membership returns the membership for companyID, or nil when the user does
// not belong to it.
func (u *User) Membership(companyID string) *CompanyMembership {
	if u == nil || companyID == "" {
		return nil
	}
	for i := range u.Companies {
		if u.Companies[i].ID == companyID {
			return &u.Companies[i]
		}
	}
	return nil
}
