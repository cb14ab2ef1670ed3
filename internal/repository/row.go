package repository

import (
	"encoding/json"
	"fmt"

	"shenanigigs/jobstore/internal/models"
)

// jobColumns is the storage column order used by every statement.
var jobColumns = []string{
	"id",
	"title",
	"description",
	"long_description",
	"budget",
	"time_posted",
	"proposals",
	"category",
	"expertise",
	"client_location",
	"client_rating",
	"job_type",
	"project_length",
	"weekly_hours",
	"activity_on",
	"skills",
	"attachments",
	"questions",
	"client_history",
}

// jobRow is the flat storage shape of a job. ClientHistory holds the raw
// JSONB blob.
type jobRow struct {
	ID              string   `db:"id"`
	Title           string   `db:"title"`
	Description     string   `db:"description"`
	LongDescription string   `db:"long_description"`
	Budget          string   `db:"budget"`
	TimePosted      string   `db:"time_posted"`
	Proposals       int      `db:"proposals"`
	Category        string   `db:"category"`
	Expertise       string   `db:"expertise"`
	ClientLocation  string   `db:"client_location"`
	ClientRating    float64  `db:"client_rating"`
	JobType         string   `db:"job_type"`
	ProjectLength   string   `db:"project_length"`
	WeeklyHours     *string  `db:"weekly_hours"`
	ActivityOn      string   `db:"activity_on"`
	Skills          []string `db:"skills"`
	Attachments     []string `db:"attachments"`
	Questions       []string `db:"questions"`
	ClientHistory   []byte   `db:"client_history"`
}

type searchRow struct {
	jobRow
	TotalCount int64 `db:"total_count"`
}

func toRow(job models.JobRecord) (jobRow, error) {
	history, err := json.Marshal(job.ClientHistory)
	if err != nil {
		return jobRow{}, fmt.Errorf("encode client_history for job %q: %w", job.ID, err)
	}

	return jobRow{
		ID:              job.ID,
		Title:           job.Title,
		Description:     job.Description,
		LongDescription: job.LongDescription,
		Budget:          job.Budget,
		TimePosted:      job.TimePosted,
		Proposals:       job.Proposals,
		Category:        job.Category,
		Expertise:       job.Expertise,
		ClientLocation:  job.ClientLocation,
		ClientRating:    job.ClientRating,
		JobType:         job.JobType,
		ProjectLength:   job.ProjectLength,
		WeeklyHours:     job.WeeklyHours,
		ActivityOn:      job.ActivityOn,
		Skills:          job.Skills,
		Attachments:     job.Attachments,
		Questions:       job.Questions,
		ClientHistory:   history,
	}, nil
}

func fromRow(row jobRow) (models.JobRecord, error) {
	var history models.ClientHistory
	if err := json.Unmarshal(row.ClientHistory, &history); err != nil {
		return models.JobRecord{}, fmt.Errorf("decode client_history for job %q: %w", row.ID, err)
	}

	return models.JobRecord{
		ID:              row.ID,
		Title:           row.Title,
		Description:     row.Description,
		LongDescription: row.LongDescription,
		Budget:          row.Budget,
		TimePosted:      row.TimePosted,
		Proposals:       row.Proposals,
		Category:        row.Category,
		Expertise:       row.Expertise,
		ClientLocation:  row.ClientLocation,
		ClientRating:    row.ClientRating,
		JobType:         row.JobType,
		ProjectLength:   row.ProjectLength,
		WeeklyHours:     row.WeeklyHours,
		ActivityOn:      row.ActivityOn,
		Skills:          row.Skills,
		Attachments:     row.Attachments,
		Questions:       row.Questions,
		ClientHistory:   &history,
	}, nil
}

// values returns the bound parameters in jobColumns order. Absent optional
// lists are passed as untyped nil so they are stored as NULL rather than '{}'.
func (r jobRow) values() []any {
	return []any{
		r.ID,
		r.Title,
		r.Description,
		r.LongDescription,
		r.Budget,
		r.TimePosted,
		r.Proposals,
		r.Category,
		r.Expertise,
		r.ClientLocation,
		r.ClientRating,
		r.JobType,
		r.ProjectLength,
		r.WeeklyHours,
		r.ActivityOn,
		r.Skills,
		nullableList(r.Attachments),
		nullableList(r.Questions),
		r.ClientHistory,
	}
}

// setMap returns every column except the primary key, for UPDATE.
func (r jobRow) setMap() map[string]any {
	values := r.values()
	set := make(map[string]any, len(jobColumns)-1)
	for i, column := range jobColumns {
		if column == "id" {
			continue
		}
		set[column] = values[i]
	}
	return set
}

func nullableList(s []string) any {
	if s == nil {
		return nil
	}
	return s
}
