package audit

import (
	"time"

	id "coursehub/pkg/domain"
)

// Action names a teacher-application lifecycle event.
type Action string

const (
	ActionApplicationCreated     Action = "teacher_application_created"
	ActionApplicationUpdated     Action = "teacher_application_updated"
	ActionApplicationResubmitted Action = "teacher_application_resubmitted"
	ActionApplicationSubmitted   Action = "teacher_application_submitted"
	ActionApplicationReviewed    Action = "teacher_application_reviewed"
	ActionProfileUpdated         Action = "teacher_profile_updated"
	ActionCredentialsReconciled  Action = "teacher_credentials_reconciled"
	ActionApplicantRoleGranted   Action = "applicant_role_granted"
)

// Event is emitted after a lifecycle operation commits. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Action        Action            `json:"action"`
	Timestamp     time.Time         `json:"timestamp"`
	UserID        id.UserID         `json:"user_id"`
	ApplicationID id.ApplicationID  `json:"application_id,omitempty"`
	Status        string            `json:"status,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}
