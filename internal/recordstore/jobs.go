package recordstore

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jonathan/talent-sourcing/internal/parsing"
	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/tidwall/gjson"
)

// GetJob fetches a job record.
func (c *Client) GetJob(ctx context.Context, id string) (parsing.JobRecord, error) {
	body, err := c.get(ctx, "/api/jobs/"+url.PathEscape(id), nil)
	if err != nil {
		return parsing.JobRecord{}, err
	}
	data := body.Get("data")
	if !data.IsObject() {
		return parsing.JobRecord{}, fmt.Errorf("job %s: response has no data object", id)
	}

	job := parsing.JobRecord{
		ID:                 stringField(data, "id"),
		Title:              stringField(data, "position_name", "positionName", "title"),
		Company:            stringField(data, "client_company", "clientCompany", "company"),
		Industry:           stringField(data, "industry"),
		KeySkills:          joinedField(data, "key_skills", "keySkills"),
		NiceToHave:         joinedField(data, "nice_to_have", "niceToHave", "nice_to_have_skills"),
		ExperienceRequired: stringField(data, "experience_required", "experienceRequired"),
		Location:           stringField(data, "location"),
	}
	if job.ID == "" {
		job.ID = id
	}
	return job, nil
}

// GetRole fetches a job and maps it into a RoleRequirement.
func (c *Client) GetRole(ctx context.Context, id string) (types.RoleRequirement, error) {
	job, err := c.GetJob(ctx, id)
	if err != nil {
		return types.RoleRequirement{}, err
	}
	return parsing.BuildRole(job)
}

// joinedField returns a string field, joining arrays with commas.
func joinedField(v gjson.Result, keys ...string) string {
	r := field(v, keys...)
	if !r.IsArray() {
		return r.String()
	}
	var s string
	for i, item := range r.Array() {
		if i > 0 {
			s += ","
		}
		s += item.String()
	}
	return s
}

// TargetJobIDs returns the job ids the bot is configured to work on.
func (c *Client) TargetJobIDs(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/api/bot-config", nil)
	if err != nil {
		return nil, err
	}
	var ids []string
	field(body.Get("data"), "target_job_ids", "targetJobIds").ForEach(func(_, v gjson.Result) bool {
		if s := v.String(); s != "" {
			ids = append(ids, s)
		}
		return true
	})
	return ids, nil
}
