package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
)

type reviewRequest struct {
	ReviewerID string  `json:"reviewer_id" validate:"required,uuid"`
	Decision   string  `json:"decision" validate:"required,oneof=approve reject"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`

	reviewer id.UserID
}

func (r *reviewRequest) Normalize() {
	r.Decision = strings.ToLower(strings.TrimSpace(r.Decision))
	if r.Notes != nil {
		n := strings.TrimSpace(*r.Notes)
		r.Notes = &n
	}
}

func (r *reviewRequest) Validate() error {
	reviewer, err := id.ParseUserID(r.ReviewerID)
	if err != nil {
		return err
	}
	r.reviewer = reviewer
	return nil
}

// batchRequest carries raw items so each can be split on the presence of
// an "id" before decoding into the kind's fields.
type batchRequest struct {
	Items []json.RawMessage `json:"items" validate:"required"`
}

type itemEnvelope struct {
	ID *id.CredentialID `json:"id"`
}

// decodeItems turns raw batch entries into tagged items. Field validation is
// left to the reconciler so errors keep the item[i] form.
func decodeItems[F any](raw []json.RawMessage) ([]models.Item[F], error) {
	items := make([]models.Item[F], 0, len(raw))
	for i, msg := range raw {
		var env itemEnvelope
		var fields F
		if err := json.Unmarshal(msg, &env); err != nil {
			return nil, badItem(i, err)
		}
		dec := json.NewDecoder(bytes.NewReader(msg))
		if err := dec.Decode(&fields); err != nil {
			return nil, badItem(i, err)
		}
		if env.ID != nil {
			items = append(items, models.UpdateItem(*env.ID, fields))
			continue
		}
		items = append(items, models.NewItem(fields))
	}
	return items, nil
}

func badItem(i int, err error) error {
	return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("item[%d]: invalid json", i)).
		WithReason(models.ReasonInvalidItem).
		WithDetail("index", i)
}
