package qualtrics

import (
	"context"
	"net/http"
	"time"

	"github.com/s0up4200/surveyarr/table"
)

const (
	// DefaultActivationDays is how long an activated survey stays open when
	// no end date is given.
	DefaultActivationDays = 130

	activationTimeFormat = "2006-01-02T15:04:05Z"
)

// Surveys returns a paginator over the survey listing.
func (c *Client) Surveys() *Paginator[Survey] {
	return newPaginator[Survey](c, c.endpoint("surveys"), authLower)
}

// ListSurveys retrieves all surveys visible to the token.
func (c *Client) ListSurveys(ctx context.Context) ([]Survey, error) {
	return c.Surveys().Collect(ctx)
}

// SurveysTable retrieves all surveys as a table with every field the
// platform returned.
func (c *Client) SurveysTable(ctx context.Context) (*table.Table, error) {
	return c.listTable(ctx, c.endpoint("surveys"), authLower)
}

// FindSurveyID returns the id of the only survey whose name contains search.
func (c *Client) FindSurveyID(ctx context.Context, search string) (string, error) {
	surveys, err := c.ListSurveys(ctx)
	if err != nil {
		return "", err
	}
	return matchName("surveys", search, surveys, func(s Survey) Candidate {
		return Candidate{ID: s.ID, Name: s.Name}
	})
}

// GetSurvey retrieves a survey definition.
func (c *Client) GetSurvey(ctx context.Context, surveyID string) (Resource, error) {
	if err := requireID("surveyId", surveyID); err != nil {
		return nil, err
	}
	req := c.newRequest(http.MethodGet, c.endpoint("surveys", surveyID), authLower, nil)
	return callResult[Resource](ctx, c, req)
}

// CopySurvey copies a survey under a new name and returns the new survey
// id. An empty owner uses the configured default survey owner.
func (c *Client) CopySurvey(ctx context.Context, surveyID, newName, owner string) (string, error) {
	if err := requireID("surveyId", surveyID); err != nil {
		return "", err
	}
	if err := requireID("projectName", newName); err != nil {
		return "", err
	}
	if owner == "" {
		owner = c.cfg.DefaultSurveyOwner
	}
	if err := requireID("owner", owner); err != nil {
		return "", err
	}

	req := c.newRequest(http.MethodPost, c.endpoint("surveys"), authUpperJSON, map[string]string{
		"projectName": newName,
	})
	req.Header = append(req.Header,
		HeaderField{Name: headerCopySource, Value: surveyID},
		HeaderField{Name: headerCopyOwner, Value: owner},
	)
	return c.callID(ctx, req)
}

// DeleteSurvey deletes a survey.
func (c *Client) DeleteSurvey(ctx context.Context, surveyID string) error {
	if err := requireID("surveyId", surveyID); err != nil {
		return err
	}
	req := c.newRequest(http.MethodDelete, c.endpoint("surveys", surveyID), authUpper, nil)
	return c.callNoResult(ctx, req)
}

type activationBody struct {
	IsActive   bool `json:"isActive"`
	Expiration struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	} `json:"expiration"`
}

// ActivateSurvey opens a survey for responses within the given window.
func (c *Client) ActivateSurvey(ctx context.Context, surveyID string, window ActivationWindow) error {
	if err := requireID("surveyId", surveyID); err != nil {
		return err
	}

	now := c.now()
	start, end := window.Start, window.End
	if start.IsZero() {
		start = now
	}
	if end.IsZero() {
		end = now.Add(DefaultActivationDays * 24 * time.Hour)
	}
	if !end.After(start) {
		return &ValidationError{Field: "expiration", Row: -1, Reason: "end must be after start"}
	}

	body := activationBody{IsActive: true}
	body.Expiration.StartDate = start.UTC().Format(activationTimeFormat)
	body.Expiration.EndDate = end.UTC().Format(activationTimeFormat)

	req := c.newRequest(http.MethodPut, c.endpoint("surveys", surveyID), authUpperJSON, body)
	return c.callNoResult(ctx, req)
}

// listTable collects a listing as generic records and builds a table. On a
// partial failure the table holds the records read before it.
func (c *Client) listTable(ctx context.Context, url string, auth authStyle) (*table.Table, error) {
	records, err := newPaginator[Resource](c, url, auth).Collect(ctx)
	return table.FromRecords(records), err
}
