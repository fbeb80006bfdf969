package models

import (
	"time"

	id "coursehub/pkg/domain"
)

// Role is an authorization marker held by an account.
type Role string

const (
	// RoleStudent is the base role every marketplace account starts with.
	RoleStudent Role = "student"
	// RoleTeacherApplicant is granted on the first teacher application.
	RoleTeacherApplicant Role = "teacher_applicant"
	// RoleTeacher is granted when an application is approved.
	RoleTeacher Role = "teacher"
)

// AccountStatus is the lifecycle status of an account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountInactive  AccountStatus = "inactive"
	AccountSuspended AccountStatus = "suspended"
)

type User struct {
	ID        id.UserID
	Email     string
	Status    AccountStatus
	CreatedAt time.Time
}

func (u *User) IsActive() bool {
	return u.Status == AccountActive
}
