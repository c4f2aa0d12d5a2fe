package qualtrics

import "time"

// Resource is an untyped platform object, used where the result shape
// varies by account configuration (survey definitions, mailing list detail).
type Resource = map[string]any

// Survey is an element of the survey listing
type Survey struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OwnerID      string `json:"ownerId"`
	LastModified string `json:"lastModified"`
	CreationDate string `json:"creationDate"`
	IsActive     bool   `json:"isActive"`
}

// MailingList is an element of the mailing list listing
type MailingList struct {
	LibraryID string `json:"libraryId"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Folder    string `json:"folder"`
}

// Contact is a mailing list member as returned by the platform
type Contact struct {
	ID                    string            `json:"id"`
	FirstName             string            `json:"firstName"`
	LastName              string            `json:"lastName"`
	Email                 string            `json:"email"`
	ExternalDataReference string            `json:"externalDataReference"`
	EmbeddedData          map[string]string `json:"embeddedData"`
	Language              string            `json:"language"`
	Unsubscribed          bool              `json:"unsubscribed"`
}

// User is an element of the user listing
type User struct {
	ID            string `json:"id"`
	DivisionID    string `json:"divisionId"`
	Username      string `json:"username"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	UserType      string `json:"userType"`
	Email         string `json:"email"`
	AccountStatus string `json:"accountStatus"`
}

// DistributionLink is a personal survey link generated for one contact
type DistributionLink struct {
	ContactID             string `json:"contactId"`
	Link                  string `json:"link"`
	Exists                bool   `json:"exists"`
	LinkExpiration        string `json:"linkExpiration"`
	Status                string `json:"status"`
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	ExternalDataReference string `json:"externalDataReference"`
	Email                 string `json:"email"`
	Unsubscribed          bool   `json:"unsubscribed"`
}

// ContactInput is the JSON shape of a contact submitted to a mailing list.
type ContactInput struct {
	Email             string            `json:"email" validate:"required"`
	FirstName         string            `json:"firstName,omitempty"`
	LastName          string            `json:"lastName,omitempty"`
	ExternalReference string            `json:"externalReference"`
	Unsubscribed      bool              `json:"unsubscribed"`
	Language          string            `json:"language"`
	EmbeddedData      map[string]string `json:"embeddedData,omitempty"`
}

// ContactUpdate changes selected fields of an existing contact. Nil fields
// are left untouched.
type ContactUpdate struct {
	FirstName         *string           `json:"firstName,omitempty"`
	LastName          *string           `json:"lastName,omitempty"`
	Email             *string           `json:"email,omitempty" validate:"omitempty,email"`
	ExternalReference *string           `json:"externalReference,omitempty"`
	Unsubscribed      *bool             `json:"unsubscribed,omitempty"`
	Language          *string           `json:"language,omitempty"`
	EmbeddedData      map[string]string `json:"embeddedData,omitempty"`
}

// ActivationWindow bounds the period a survey accepts responses. Zero
// times default to now and now plus DefaultActivationDays.
type ActivationWindow struct {
	Start time.Time
	End   time.Time
}

// AddRecordsResult summarises AddRecordsToMailingList.
type AddRecordsResult struct {
	Added  []string
	Failed []RecordFailure
}

// RecordFailure is a contact that could not be added.
type RecordFailure struct {
	Row   int
	Email string
	Err   error
}

// ContactImportProgress reports a bulk contact import.
type ContactImportProgress struct {
	ID              string  `json:"id"`
	PercentComplete float64 `json:"percentComplete"`
	Status          string  `json:"status"`
	Contacts        struct {
		Count struct {
			Added   int `json:"added"`
			Updated int `json:"updated"`
			Failed  int `json:"failed"`
		} `json:"count"`
	} `json:"contacts"`
}

// Ptr returns a pointer to v, for filling optional parameter fields.
func Ptr[T any](v T) *T {
	return &v
}
