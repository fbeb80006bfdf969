// Package domain defines typed identifiers shared across bounded contexts.
//
// Typed IDs keep a user id from being passed where an application id is
// expected. Parse functions are the trust boundary: they reject empty, nil and
// non-positive values with CodeInvalidInput.
package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "coursehub/pkg/domain-errors"
)

// UserID identifies a marketplace account. Owned by the identity service.
type UserID uuid.UUID

// ApplicationID is the surrogate key of a teacher application.
type ApplicationID int64

// CategoryID identifies a taxonomy category (primary or secondary).
type CategoryID int64

// CredentialID is the surrogate key of a credential record of any kind.
type CredentialID int64

func (u UserID) String() string { return uuid.UUID(u).String() }

// IsNil reports whether the id is the zero UUID.
func (u UserID) IsNil() bool { return uuid.UUID(u) == uuid.Nil }

// MarshalText renders the canonical UUID form in JSON and logs.
func (u UserID) MarshalText() ([]byte, error) { return uuid.UUID(u).MarshalText() }

func (u *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(u).UnmarshalText(b)
}

func (a ApplicationID) String() string { return strconv.FormatInt(int64(a), 10) }
func (c CategoryID) String() string    { return strconv.FormatInt(int64(c), 10) }
func (c CredentialID) String() string  { return strconv.FormatInt(int64(c), 10) }

// ParseUserID parses a UUID string into a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseApplicationID parses a positive integer into an ApplicationID.
func ParseApplicationID(s string) (ApplicationID, error) {
	v, err := parsePositive(s, "application id")
	return ApplicationID(v), err
}

// ParseCategoryID parses a positive integer into a CategoryID.
func ParseCategoryID(s string) (CategoryID, error) {
	v, err := parsePositive(s, "category id")
	return CategoryID(v), err
}

// ParseCredentialID parses a positive integer into a CredentialID.
func ParseCredentialID(s string) (CredentialID, error) {
	v, err := parsePositive(s, "credential id")
	return CredentialID(v), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be nil")
	}
	return parsed, nil
}

func parsePositive(s, label string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if v <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" must be positive")
	}
	return v, nil
}
