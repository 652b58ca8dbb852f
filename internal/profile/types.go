// internal/profile/types.go
package profile

// EducationEntry is the structured form of a single raw education record.
// Entries are kept 1:1 with the raw education history, even when every
// field is empty.
type EducationEntry struct {
	SchoolName   string `json:"schoolName"`
	DegreeName   string `json:"degreeName"`
	FieldOfStudy string `json:"fieldOfStudy"`
	StartYear    int    `json:"startYear,omitempty"`
	StartMonth   int    `json:"startMonth,omitempty"`
	EndYear      int    `json:"endYear,omitempty"`
	EndMonth     int    `json:"endMonth,omitempty"`
}

// CanonicalProfile is the flattened, fixed-shape representation of a raw
// enrichment payload. Slice fields are never nil so the profile can be
// embedded into prompts as well-formed JSON without null checks downstream.
type CanonicalProfile struct {
	PhotoURL       string           `json:"photoUrl,omitempty"`
	OpenToWork     bool             `json:"open_to_work"`
	Premium        bool             `json:"premium"`
	FollowerCount  int              `json:"follower_count,omitempty"`
	Location       string           `json:"location,omitempty"`
	PositionsCount int              `json:"positions_count"`
	Companies      []string         `json:"companies"`
	Titles         []string         `json:"titles"`
	Descriptions   []string         `json:"descriptions"`
	Skills         []string         `json:"skills"`
	SchoolNames    []string         `json:"school_names"`
	Degrees        []string         `json:"degrees"`
	FieldsOfStudy  []string         `json:"fields_of_study"`
	Education      []EducationEntry `json:"education"`
	Languages      []string         `json:"languages"`
}

// Empty returns a well-formed all-defaults profile.
func Empty() CanonicalProfile {
	return CanonicalProfile{
		Companies:     []string{},
		Titles:        []string{},
		Descriptions:  []string{},
		Skills:        []string{},
		SchoolNames:   []string{},
		Degrees:       []string{},
		FieldsOfStudy: []string{},
		Education:     []EducationEntry{},
		Languages:     []string{},
	}
}
