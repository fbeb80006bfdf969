package models

import dErrors "coursehub/pkg/domain-errors"

// Reasons attached to teacher-application errors. Clients branch on these.
const (
	ReasonNotEligible           dErrors.Reason = "not_eligible"
	ReasonUserNotFound          dErrors.Reason = "user_not_found"
	ReasonRoleForbidden         dErrors.Reason = "role_forbidden"
	ReasonAccountInactive       dErrors.Reason = "account_inactive"
	ReasonDuplicateApplication  dErrors.Reason = "duplicate_application"
	ReasonApplicationNotFound   dErrors.Reason = "application_not_found"
	ReasonInvalidState          dErrors.Reason = "invalid_state"
	ReasonPermissionDenied      dErrors.Reason = "permission_denied"
	ReasonAlreadySubmitted      dErrors.Reason = "already_submitted"
	ReasonIncompleteApplication dErrors.Reason = "incomplete_application"
	ReasonBatchSizeInvalid      dErrors.Reason = "batch_size_invalid"
	ReasonInvalidItem           dErrors.Reason = "invalid_item"
	ReasonRecordNotFound        dErrors.Reason = "record_not_found"
	ReasonOwnershipMismatch     dErrors.Reason = "ownership_mismatch"
	ReasonInvalidPeriod         dErrors.Reason = "invalid_period"
)
