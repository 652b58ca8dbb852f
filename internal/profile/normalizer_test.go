// internal/profile/normalizer_test.go
package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_NeverFails(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
	}{
		{"nil input", nil},
		{"empty map", map[string]interface{}{}},
		{"person key with non-map value", map[string]interface{}{"person": "not a map"}},
		{"unexpected field types", map[string]interface{}{
			"photoUrl":    42,
			"openToWork":  "yes",
			"premium":     1,
			"skills":      "Go",
			"positions":   []interface{}{"bad"},
			"schools":     false,
			"languages":   map[string]interface{}{},
			"followerCount": "many",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(tt.raw)

			assert.Empty(t, out.PhotoURL)
			assert.False(t, out.OpenToWork)
			assert.False(t, out.Premium)
			assert.Zero(t, out.FollowerCount)
			assert.Zero(t, out.PositionsCount)
			assert.NotNil(t, out.Companies)
			assert.NotNil(t, out.Titles)
			assert.NotNil(t, out.Descriptions)
			assert.NotNil(t, out.Skills)
			assert.NotNil(t, out.SchoolNames)
			assert.NotNil(t, out.Degrees)
			assert.NotNil(t, out.FieldsOfStudy)
			assert.NotNil(t, out.Education)
			assert.NotNil(t, out.Languages)
		})
	}
}

func TestNormalize_PersonWrapped(t *testing.T) {
	raw := map[string]interface{}{
		"person": map[string]interface{}{
			"photoUrl":      "https://example.com/photo.jpg",
			"openToWork":    true,
			"premium":       true,
			"followerCount": float64(1234),
			"location":      "Vancouver, BC",
		},
	}

	out := Normalize(raw)

	assert.Equal(t, "https://example.com/photo.jpg", out.PhotoURL)
	assert.True(t, out.OpenToWork)
	assert.True(t, out.Premium)
	assert.Equal(t, 1234, out.FollowerCount)
	assert.Equal(t, "Vancouver, BC", out.Location)
}

func TestNormalize_EmbeddedSkillsParsing(t *testing.T) {
	raw := map[string]interface{}{
		"positions": map[string]interface{}{
			"positionHistory": []interface{}{
				map[string]interface{}{
					"companyName": "Acme",
					"title":       "Data Engineer",
					"description": "Built pipelines. Skills: SQL Server Management Studio · Python, CSV",
				},
			},
		},
	}

	out := Normalize(raw)

	assert.Equal(t, []string{"CSV", "Python", "SQL Server Management Studio"}, out.Skills)
	assert.Equal(t, []string{"Acme"}, out.Companies)
	assert.Equal(t, []string{"Data Engineer"}, out.Titles)
	require.Len(t, out.Descriptions, 1)
}

func TestNormalize_SkillsDedupedAndSorted(t *testing.T) {
	raw := map[string]interface{}{
		"skills": []interface{}{" Python ", "Go", "Python", "", "Airflow"},
		"positions": map[string]interface{}{
			"positionHistory": []interface{}{
				map[string]interface{}{
					"description": "Skills: Go · Terraform",
				},
			},
		},
	}

	out := Normalize(raw)

	assert.Equal(t, []string{"Airflow", "Go", "Python", "Terraform"}, out.Skills)
}

func TestNormalize_LanguagesPreferProficiency(t *testing.T) {
	raw := map[string]interface{}{
		"languagesWithProficiency": []interface{}{
			map[string]interface{}{"language": "French", "proficiency": "Fluent"},
		},
		"languages": []interface{}{"German"},
	}

	out := Normalize(raw)

	// The plain list must not leak in when a qualified list exists.
	assert.Equal(t, []string{"French (Fluent)"}, out.Languages)
}

func TestNormalize_LanguagesVariants(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]interface{}
		expected []string
	}{
		{
			name: "proficiency absent falls back to language name",
			raw: map[string]interface{}{
				"languagesWithProficiency": []interface{}{
					map[string]interface{}{"language": "Punjabi"},
					map[string]interface{}{"proficiency": "Native"},
				},
			},
			expected: []string{"Punjabi"},
		},
		{
			name: "plain list preserved in order",
			raw: map[string]interface{}{
				"languages": []interface{}{"English", 7, "Hindi"},
			},
			expected: []string{"English", "Hindi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw).Languages)
		})
	}
}

func TestNormalize_EducationOneToOne(t *testing.T) {
	raw := map[string]interface{}{
		"schools": map[string]interface{}{
			"educationHistory": []interface{}{
				map[string]interface{}{
					"schoolName":   "Simon Fraser University",
					"degreeName":   "BSc",
					"fieldOfStudy": "Computing Science",
					"startEndDate": map[string]interface{}{
						"start": map[string]interface{}{"year": float64(2018), "month": float64(9)},
						"end":   map[string]interface{}{"year": float64(2023), "month": float64(5)},
					},
				},
				map[string]interface{}{}, // empty record still yields an entry
				"not a map",              // skipped entirely
				map[string]interface{}{
					"schoolName": "Langara College",
				},
			},
		},
	}

	out := Normalize(raw)

	require.Len(t, out.Education, 3)
	assert.Equal(t, "Simon Fraser University", out.Education[0].SchoolName)
	assert.Equal(t, 2018, out.Education[0].StartYear)
	assert.Equal(t, 5, out.Education[0].EndMonth)
	assert.Equal(t, EducationEntry{}, out.Education[1])

	// Flat lists only collect non-empty values.
	assert.Equal(t, []string{"Simon Fraser University", "Langara College"}, out.SchoolNames)
	assert.Equal(t, []string{"BSc"}, out.Degrees)
	assert.Equal(t, []string{"Computing Science"}, out.FieldsOfStudy)
	assert.LessOrEqual(t, len(out.SchoolNames), len(out.Education))
	assert.LessOrEqual(t, len(out.Degrees), len(out.Education))
	assert.LessOrEqual(t, len(out.FieldsOfStudy), len(out.Education))
}

func TestNormalize_PositionsParallelLists(t *testing.T) {
	raw := map[string]interface{}{
		"positions": map[string]interface{}{
			"positionsCount": float64(3),
			"positionHistory": []interface{}{
				map[string]interface{}{"companyName": "Acme", "title": ""},
				map[string]interface{}{"title": "Analyst", "description": "Reporting"},
				map[string]interface{}{"companyName": "Globex", "title": "Engineer"},
			},
		},
	}

	out := Normalize(raw)

	assert.Equal(t, 3, out.PositionsCount)
	assert.Equal(t, []string{"Acme", "Globex"}, out.Companies)
	assert.Equal(t, []string{"Analyst", "Engineer"}, out.Titles)
	assert.Equal(t, []string{"Reporting"}, out.Descriptions)
}

func TestNormalize_MarshalsToStableJSON(t *testing.T) {
	out := Normalize(nil)

	data, err := json.Marshal(out)
	require.NoError(t, err)

	// Empty slices must serialize as [], not null, so prompts always get
	// well-formed structured data.
	assert.Contains(t, string(data), `"skills":[]`)
	assert.Contains(t, string(data), `"education":[]`)
	assert.NotContains(t, string(data), "null")
}
