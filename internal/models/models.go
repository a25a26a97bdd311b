package models

import "time"

// Upstream CRM entities. These are transient, read-only copies held for the
// duration of one aggregation pass.

type SourceRef struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

type CustomFieldValue struct {
	CustomFieldID int    `json:"custom_field_id"`
	Value         string `json:"value"`
}

type ProjectMembership struct {
	ProjectID int `json:"project_id"`
}

type Rating struct {
	ID    int    `json:"id,omitempty"`
	Value string `json:"value"`
}

type Contact struct {
	ID                  int                 `json:"id"`
	FirstName           string              `json:"first_name,omitempty"`
	LastName            string              `json:"last_name,omitempty"`
	Email               string              `json:"email,omitempty"`
	Phone               string              `json:"phone,omitempty"`
	MobilePhone         string              `json:"mobile_phone,omitempty"`
	WorkPhone           string              `json:"work_phone,omitempty"`
	City                string              `json:"city,omitempty"`
	Postcode            string              `json:"postcode,omitempty"`
	Agent               bool                `json:"agent,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	RegistrationSources []SourceRef         `json:"registration_sources,omitempty"`
	CustomFieldValues   []CustomFieldValue  `json:"custom_field_values,omitempty"`
	Projects            []ProjectMembership `json:"projects,omitempty"`
	Ratings             []Rating            `json:"ratings,omitempty"`
}

// InProject reports whether the contact's membership list names projectID.
func (c Contact) InProject(projectID int) bool {
	for _, p := range c.Projects {
		if p.ProjectID == projectID {
			return true
		}
	}
	return false
}

type RegistrationSource struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CustomFieldDefinition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Interaction struct {
	ID                int       `json:"id"`
	ContactID         int       `json:"contact_id"`
	InteractionTypeID int       `json:"interaction_type_id,omitempty"`
	TeamMemberID      int       `json:"team_member_id,omitempty"`
	Date              time.Time `json:"date,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

type InteractionType struct {
	ID    int    `json:"id"`
	Value string `json:"value,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Label prefers the value field; some tenants populate name instead.
func (t InteractionType) Label() string {
	if t.Value != "" {
		return t.Value
	}
	return t.Name
}

type TeamMember struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

type Project struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}
