package models

type VerificationStatus struct {
	Payment bool `json:"payment"`
	Phone   bool `json:"phone"`
	Email   bool `json:"email"`
}

// ClientHistory summarises the poster's reputation. TotalSpent is a
// pre-formatted currency string, not a number.
type ClientHistory struct {
	JobsPosted         int                `json:"jobsPosted"`
	HireRate           float64            `json:"hireRate" validate:"finite"`
	TotalSpent         string             `json:"totalSpent" validate:"required"`
	MemberSince        string             `json:"memberSince" validate:"required"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
}

// JobRecord is a job posting in its external shape. A nil Attachments or
// Questions slice means the field is absent; an empty slice is kept as empty.
type JobRecord struct {
	ID              string         `json:"id" validate:"required"`
	Title           string         `json:"title" validate:"required"`
	Description     string         `json:"description" validate:"required"`
	LongDescription string         `json:"longDescription" validate:"required"`
	Budget          string         `json:"budget" validate:"required"`
	TimePosted      string         `json:"timePosted" validate:"required"`
	Proposals       int            `json:"proposals" validate:"gte=0"`
	Category        string         `json:"category" validate:"required"`
	Expertise       string         `json:"expertise" validate:"required"`
	ClientLocation  string         `json:"clientLocation" validate:"required"`
	ClientRating    float64        `json:"clientRating" validate:"finite"`
	JobType         string         `json:"jobType" validate:"required"`
	ProjectLength   string         `json:"projectLength" validate:"required"`
	WeeklyHours     *string        `json:"weeklyHours,omitempty"`
	ActivityOn      string         `json:"activityOn" validate:"required"`
	Skills          []string       `json:"skills" validate:"required"`
	Attachments     []string       `json:"attachments"`
	Questions       []string       `json:"questions"`
	ClientHistory   *ClientHistory `json:"clientHistory" validate:"required"`
}

// JobPatch holds the fields of a partial update. Nil fields are left as they
// are. A non-nil pointer to a nil slice clears an optional list, and
// ClearWeeklyHours removes weeklyHours.
type JobPatch struct {
	Title           *string        `json:"title,omitempty"`
	Description     *string        `json:"description,omitempty"`
	LongDescription *string        `json:"longDescription,omitempty"`
	Budget          *string        `json:"budget,omitempty"`
	TimePosted      *string        `json:"timePosted,omitempty"`
	Proposals       *int           `json:"proposals,omitempty"`
	Category        *string        `json:"category,omitempty"`
	Expertise       *string        `json:"expertise,omitempty"`
	ClientLocation  *string        `json:"clientLocation,omitempty"`
	ClientRating    *float64       `json:"clientRating,omitempty"`
	JobType         *string        `json:"jobType,omitempty"`
	ProjectLength   *string        `json:"projectLength,omitempty"`
	WeeklyHours     *string        `json:"weeklyHours,omitempty"`
	ActivityOn      *string        `json:"activityOn,omitempty"`
	Skills          *[]string      `json:"skills,omitempty"`
	Attachments     *[]string      `json:"attachments,omitempty"`
	Questions       *[]string      `json:"questions,omitempty"`
	ClientHistory   *ClientHistory `json:"clientHistory,omitempty"`

	ClearWeeklyHours bool `json:"-"`
}

// Apply returns a copy of job with the patch merged over it. The merge is
// shallow: a supplied ClientHistory replaces the stored one wholesale.
func (p JobPatch) Apply(job JobRecord) JobRecord {
	merged := job.Clone()

	setString(&merged.Title, p.Title)
	setString(&merged.Description, p.Description)
	setString(&merged.LongDescription, p.LongDescription)
	setString(&merged.Budget, p.Budget)
	setString(&merged.TimePosted, p.TimePosted)
	setString(&merged.Category, p.Category)
	setString(&merged.Expertise, p.Expertise)
	setString(&merged.ClientLocation, p.ClientLocation)
	setString(&merged.JobType, p.JobType)
	setString(&merged.ProjectLength, p.ProjectLength)
	setString(&merged.ActivityOn, p.ActivityOn)

	if p.Proposals != nil {
		merged.Proposals = *p.Proposals
	}
	if p.ClientRating != nil {
		merged.ClientRating = *p.ClientRating
	}
	if p.ClearWeeklyHours {
		merged.WeeklyHours = nil
	}
	if p.WeeklyHours != nil {
		v := *p.WeeklyHours
		merged.WeeklyHours = &v
	}
	if p.Skills != nil {
		merged.Skills = cloneStrings(*p.Skills)
	}
	if p.Attachments != nil {
		merged.Attachments = cloneStrings(*p.Attachments)
	}
	if p.Questions != nil {
		merged.Questions = cloneStrings(*p.Questions)
	}
	if p.ClientHistory != nil {
		ch := *p.ClientHistory
		merged.ClientHistory = &ch
	}

	return merged
}

// IsEmpty reports whether the patch changes nothing.
func (p JobPatch) IsEmpty() bool {
	return p == JobPatch{}
}

// Clone returns a deep copy so callers can mutate the result freely.
func (j JobRecord) Clone() JobRecord {
	c := j
	if j.WeeklyHours != nil {
		v := *j.WeeklyHours
		c.WeeklyHours = &v
	}
	c.Skills = cloneStrings(j.Skills)
	c.Attachments = cloneStrings(j.Attachments)
	c.Questions = cloneStrings(j.Questions)
	if j.ClientHistory != nil {
		ch := *j.ClientHistory
		c.ClientHistory = &ch
	}
	return c
}

type SearchFilters struct {
	Category  string `json:"category,omitempty"`
	Expertise string `json:"expertise,omitempty"`
	Search    string `json:"search,omitempty"`
}

type SearchResult struct {
	Jobs  []JobRecord `json:"jobs"`
	Total int         `json:"total"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
