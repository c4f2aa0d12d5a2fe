package qualtrics

import (
	"context"
	"net/http"

	"github.com/s0up4200/surveyarr/table"
)

// CreateUserParams describes a new platform user.
type CreateUserParams struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	UserType  string `json:"userType" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	// Language defaults to DefaultLanguage.
	Language              string `json:"language"`
	DivisionID            string `json:"divisionId,omitempty"`
	AccountExpirationDate string `json:"accountExpirationDate,omitempty"`
}

// UpdateUserParams changes selected fields of a user. Nil fields are not sent.
// Language is not defaulted, unlike CreateUser: nil leaves the user's
// language unchanged.
type UpdateUserParams struct {
	Username              *string        `json:"username,omitempty"`
	FirstName             *string        `json:"firstName,omitempty"`
	LastName              *string        `json:"lastName,omitempty"`
	UserType              *string        `json:"userType,omitempty"`
	DivisionID            *string        `json:"divisionId,omitempty"`
	Status                *string        `json:"status,omitempty" validate:"omitempty,oneof=active disabled"`
	Language              *string        `json:"language,omitempty"`
	TimeZone              *string        `json:"timeZone,omitempty"`
	Permissions           map[string]any `json:"permissions,omitempty"`
	AccountExpirationDate *string        `json:"accountExpirationDate,omitempty"`
}

// CreateUser creates a user and returns the new user id.
func (c *Client) CreateUser(ctx context.Context, params CreateUserParams) (string, error) {
	if params.Language == "" {
		params.Language = DefaultLanguage
	}
	if err := validateParams(params); err != nil {
		return "", err
	}

	req := c.newRequest(http.MethodPost, c.endpoint("users"), authLower, params)
	req.Header = append(req.Header, HeaderField{Name: headerContentType, Value: contentTypeJSON})
	return c.callID(ctx, req)
}

// Users returns a paginator over the user listing.
func (c *Client) Users() *Paginator[User] {
	return newPaginator[User](c, c.endpoint("users"), authLower)
}

// ListUsers retrieves all users.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	return c.Users().Collect(ctx)
}

// UsersTable retrieves all users as a table.
func (c *Client) UsersTable(ctx context.Context) (*table.Table, error) {
	return c.listTable(ctx, c.endpoint("users"), authLower)
}

// GetUser retrieves a single user.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	req := c.newRequest(http.MethodGet, c.endpoint("users", userID), authLower, nil)
	user, err := callResult[User](ctx, c, req)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes the set fields of a user.
func (c *Client) UpdateUser(ctx context.Context, userID string, params UpdateUserParams) error {
	if err := requireID("userId", userID); err != nil {
		return err
	}
	if err := validateParams(params); err != nil {
		return err
	}
	req := c.newRequest(http.MethodPut, c.endpoint("users", userID), authLower, params)
	return c.callNoResult(ctx, req)
}
