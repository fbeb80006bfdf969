package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "coursehub/pkg/domain-errors"
)

func intPtr(v int) *int { return &v }

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		name  string
		p     Period
		field string
	}{
		{"current without end", Period{StartYear: 2020, StartMonth: 1, Current: true}, ""},
		{"finished range", Period{StartYear: 2020, StartMonth: 5, EndYear: intPtr(2021), EndMonth: intPtr(2)}, ""},
		{"same month", Period{StartYear: 2020, StartMonth: 5, EndYear: intPtr(2020), EndMonth: intPtr(5)}, ""},
		{"month out of range", Period{StartYear: 2020, StartMonth: 13, Current: true}, "start_month"},
		{"year out of range", Period{StartYear: 1899, StartMonth: 1, Current: true}, "start_year"},
		{"current with end", Period{StartYear: 2020, StartMonth: 1, EndYear: intPtr(2021), EndMonth: intPtr(1), Current: true}, "end_year"},
		{"finished without end", Period{StartYear: 2020, StartMonth: 1}, "end_year"},
		{"end before start", Period{StartYear: 2020, StartMonth: 6, EndYear: intPtr(2020), EndMonth: intPtr(5)}, "end_year"},
		{"end month invalid", Period{StartYear: 2020, StartMonth: 6, EndYear: intPtr(2021), EndMonth: intPtr(0)}, "end_month"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			field, _ := dErrors.DetailOf(err, "field")
			assert.Equal(t, tc.field, field)
		})
	}
}

func TestFieldsValidate(t *testing.T) {
	period := Period{StartYear: 2019, StartMonth: 9, Current: true}

	t.Run("required domain field", func(t *testing.T) {
		err := WorkExperienceFields{Title: "Engineer", Period: period}.Validate()
		require.Error(t, err)
		field, _ := dErrors.DetailOf(err, "field")
		assert.Equal(t, "company", field)
	})

	t.Run("period rules apply to every kind", func(t *testing.T) {
		bad := Period{StartYear: 2019, StartMonth: 9}
		assert.Error(t, LearningExperienceFields{School: "ENS", Degree: "MSc", Major: "Math", Period: bad}.Validate())
		assert.Error(t, CertificateFields{Name: "TEFL", Issuer: "Cambridge", Period: bad}.Validate())
	})
}

func TestMergeIntoKeepsIdentityAndDocument(t *testing.T) {
	doc := "https://files.example.com/degree.pdf"
	r := &LearningExperience{School: "Old"}
	r.ID = 42
	r.ApplicationID = 7
	r.DocumentURL = &doc

	LearningExperienceFields{
		School: " New School ", Degree: "BA", Major: "History",
		Period: Period{StartYear: 2010, StartMonth: 9, EndYear: intPtr(2013), EndMonth: intPtr(6)},
	}.MergeInto(r)

	assert.Equal(t, "New School", r.School)
	assert.EqualValues(t, 42, r.ID)
	assert.EqualValues(t, 7, r.ApplicationID)
	require.NotNil(t, r.DocumentURL)
	assert.Equal(t, doc, *r.DocumentURL)
	assert.True(t, r.HasDocument())
}

func TestHasDocumentIgnoresBlank(t *testing.T) {
	blank := "  "
	c := &Certificate{}
	c.DocumentURL = &blank
	assert.False(t, c.HasDocument())
}

func TestItemUnion(t *testing.T) {
	n := NewItem(CertificateFields{Name: "A"})
	_, isUpdate := n.Target()
	assert.False(t, isUpdate)

	u := UpdateItem(9, CertificateFields{Name: "B"})
	target, isUpdate := u.Target()
	assert.True(t, isUpdate)
	assert.EqualValues(t, 9, target)
	assert.Equal(t, "B", u.Fields().Name)
}
