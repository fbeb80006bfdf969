package models

import (
	"strings"
	"time"

	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/validation"
)

// Kind names a credential collection.
type Kind string

const (
	KindWorkExperience     Kind = "work_experience"
	KindLearningExperience Kind = "learning_experience"
	KindCertificate        Kind = "certificate"
)

// Kinds lists the collections in completeness-check order.
var Kinds = []Kind{KindWorkExperience, KindLearningExperience, KindCertificate}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// CredentialBase holds the columns every credential kind shares.
type CredentialBase struct {
	ID            id.CredentialID
	ApplicationID id.ApplicationID
	Period
	DocumentURL *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b *CredentialBase) Base() *CredentialBase { return b }

// HasDocument reports whether a non-blank supporting document is attached.
func (b *CredentialBase) HasDocument() bool {
	return b.DocumentURL != nil && strings.TrimSpace(*b.DocumentURL) != ""
}

// Record is implemented by pointers to every credential kind.
type Record interface {
	Base() *CredentialBase
	Kind() Kind
}

// RecordPtr constrains a generic parameter to *T where *T is a Record, so
// stores can hold values and hand out pointers.
type RecordPtr[T any] interface {
	*T
	Record
}

// Fields is the validated input for one credential of record type P.
type Fields[P any] interface {
	Validate() error
	// Build creates a new, unowned record.
	Build() P
	// MergeInto overwrites the record's editable columns. Identity and
	// ownership are never touched.
	MergeInto(P)
}

type WorkExperience struct {
	CredentialBase
	Company     string
	Title       string
	Description string
}

func (*WorkExperience) Kind() Kind { return KindWorkExperience }

type LearningExperience struct {
	CredentialBase
	School string
	Degree string
	Major  string
}

func (*LearningExperience) Kind() Kind { return KindLearningExperience }

type Certificate struct {
	CredentialBase
	Name          string
	Issuer        string
	LicenseNumber string
}

func (*Certificate) Kind() Kind { return KindCertificate }

type WorkExperienceFields struct {
	Company     string `json:"company" validate:"required,max=255"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Period
	DocumentURL *string `json:"document_url,omitempty" validate:"omitempty,max=2048"`
}

func (f WorkExperienceFields) Validate() error {
	return validateFields(&f, f.Period)
}

func (f WorkExperienceFields) Build() *WorkExperience {
	r := &WorkExperience{}
	f.MergeInto(r)
	return r
}

func (f WorkExperienceFields) MergeInto(r *WorkExperience) {
	r.Company = strings.TrimSpace(f.Company)
	r.Title = strings.TrimSpace(f.Title)
	r.Description = strings.TrimSpace(f.Description)
	mergeBase(&r.CredentialBase, f.Period, f.DocumentURL)
}

type LearningExperienceFields struct {
	School string `json:"school" validate:"required,max=255"`
	Degree string `json:"degree" validate:"required,max=255"`
	Major  string `json:"major" validate:"required,max=255"`
	Period
	DocumentURL *string `json:"document_url,omitempty" validate:"omitempty,max=2048"`
}

func (f LearningExperienceFields) Validate() error {
	return validateFields(&f, f.Period)
}

func (f LearningExperienceFields) Build() *LearningExperience {
	r := &LearningExperience{}
	f.MergeInto(r)
	return r
}

func (f LearningExperienceFields) MergeInto(r *LearningExperience) {
	r.School = strings.TrimSpace(f.School)
	r.Degree = strings.TrimSpace(f.Degree)
	r.Major = strings.TrimSpace(f.Major)
	mergeBase(&r.CredentialBase, f.Period, f.DocumentURL)
}

type CertificateFields struct {
	Name          string `json:"name" validate:"required,max=255"`
	Issuer        string `json:"issuer" validate:"required,max=255"`
	LicenseNumber string `json:"license_number" validate:"max=255"`
	Period
	DocumentURL *string `json:"document_url,omitempty" validate:"omitempty,max=2048"`
}

func (f CertificateFields) Validate() error {
	return validateFields(&f, f.Period)
}

func (f CertificateFields) Build() *Certificate {
	r := &Certificate{}
	f.MergeInto(r)
	return r
}

func (f CertificateFields) MergeInto(r *Certificate) {
	r.Name = strings.TrimSpace(f.Name)
	r.Issuer = strings.TrimSpace(f.Issuer)
	r.LicenseNumber = strings.TrimSpace(f.LicenseNumber)
	mergeBase(&r.CredentialBase, f.Period, f.DocumentURL)
}

func validateFields(f any, p Period) error {
	if err := validation.Struct(f); err != nil {
		return err
	}
	return p.Validate()
}

// mergeBase copies the period and, when provided, the document reference.
// A nil document keeps the existing one.
func mergeBase(b *CredentialBase, p Period, doc *string) {
	b.Period = Period{
		StartYear:  p.StartYear,
		StartMonth: p.StartMonth,
		EndYear:    clonePtr(p.EndYear),
		EndMonth:   clonePtr(p.EndMonth),
		Current:    p.Current,
	}
	if doc != nil {
		d := strings.TrimSpace(*doc)
		b.DocumentURL = &d
	}
}
