package crm

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/brightwater-dev/leadboard/internal/models"
)

// API reads are what the fetch orchestrator and dashboard service depend on.
// *Client implements it; tests provide fakes.
type API interface {
	ListRegistrationSources(ctx context.Context, projectID int) ([]models.RegistrationSource, error)
	ListCustomFields(ctx context.Context, projectID int) ([]models.CustomFieldDefinition, error)
	ListContactsBySource(ctx context.Context, sourceID int) ([]models.Contact, error)
	ListContactsWithoutSource(ctx context.Context) ([]models.Contact, error)
	GetContact(ctx context.Context, id int) (*models.Contact, error)
	ListAllInteractions(ctx context.Context, projectID int) ([]models.Interaction, error)
	InteractionTypeMap(ctx context.Context, projectID int) map[int]string
	TeamMemberMap(ctx context.Context, projectID int) map[int]string
}

func (c *Client) ListRegistrationSources(ctx context.Context, projectID int) ([]models.RegistrationSource, error) {
	arr, _, err := c.getList(ctx, "registration_sources", "/registration-sources"+query(map[string]string{
		"project_id_eq": strconv.Itoa(projectID),
		"per_page":      strconv.Itoa(c.pageSize),
	}))
	if err != nil {
		return nil, err
	}
	return decodeList[models.RegistrationSource](arr)
}

func (c *Client) ListCustomFields(ctx context.Context, projectID int) ([]models.CustomFieldDefinition, error) {
	arr, _, err := c.getList(ctx, "custom_fields", "/custom-fields"+query(map[string]string{
		"project_id_eq": strconv.Itoa(projectID),
		"per_page":      strconv.Itoa(c.pageSize),
	}))
	if err != nil {
		return nil, err
	}
	return decodeList[models.CustomFieldDefinition](arr)
}

// ListContactsBySource pages through every contact referencing the source.
// The list endpoint lacks project membership and custom fields, so callers
// follow up with GetContact per ID.
func (c *Client) ListContactsBySource(ctx context.Context, sourceID int) ([]models.Contact, error) {
	return c.listAllContacts(ctx, map[string]string{
		"registration_source_id_eq": strconv.Itoa(sourceID),
	})
}

// ListContactsWithoutSource pages through contacts with no registration
// source at all.
func (c *Client) ListContactsWithoutSource(ctx context.Context) ([]models.Contact, error) {
	return c.listAllContacts(ctx, map[string]string{
		"registration_source_id_null": "true",
	})
}

// listAllContacts walks pages until a short page, a missing rel="next", or
// the page cap. A failed page truncates the listing rather than failing the
// whole pass; whatever was fetched so far is returned.
func (c *Client) listAllContacts(ctx context.Context, params map[string]string) ([]models.Contact, error) {
	var all []models.Contact
	for page := 1; page <= c.maxPages; page++ {
		p := map[string]string{"page": strconv.Itoa(page), "per_page": strconv.Itoa(c.pageSize)}
		for k, v := range params {
			p[k] = v
		}
		arr, links, err := c.getList(ctx, "contacts", "/contacts"+query(p))
		if err != nil {
			if page == 1 {
				return nil, err
			}
			c.log.Error().Err(err).Int("page", page).Msg("contact page fetch failed, truncating")
			return all, nil
		}
		contacts, err := decodeList[models.Contact](arr)
		if err != nil {
			return nil, err
		}
		if len(contacts) == 0 {
			break
		}
		all = append(all, contacts...)
		if !links.HasNext() && len(contacts) < c.pageSize {
			break
		}
	}
	return all, nil
}

func (c *Client) GetContact(ctx context.Context, id int) (*models.Contact, error) {
	var contact models.Contact
	if err := c.get(ctx, "contact", fmt.Sprintf("/contacts/%d", id), &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// ListAllInteractions pages through interactions for the project, with the
// same truncation policy as contacts.
func (c *Client) ListAllInteractions(ctx context.Context, projectID int) ([]models.Interaction, error) {
	var all []models.Interaction
	for page := 1; page <= c.maxPages; page++ {
		arr, links, err := c.getList(ctx, "interactions", "/interactions"+query(map[string]string{
			"project_id_eq": strconv.Itoa(projectID),
			"page":          strconv.Itoa(page),
			"per_page":      strconv.Itoa(c.pageSize),
		}))
		if err != nil {
			if page == 1 {
				return nil, err
			}
			c.log.Error().Err(err).Int("page", page).Msg("interaction page fetch failed, truncating")
			return all, nil
		}
		interactions, err := decodeList[models.Interaction](arr)
		if err != nil {
			return nil, err
		}
		if len(interactions) == 0 {
			break
		}
		all = append(all, interactions...)
		if !links.HasNext() && len(interactions) < c.pageSize {
			break
		}
	}
	return all, nil
}

func (c *Client) ListInteractionTypes(ctx context.Context) ([]models.InteractionType, error) {
	arr, _, err := c.getList(ctx, "interaction_types", "/interaction-types"+query(map[string]string{
		"per_page": strconv.Itoa(c.pageSize),
	}))
	if err != nil {
		return nil, err
	}
	return decodeList[models.InteractionType](arr)
}

func (c *Client) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	arr, _, err := c.getList(ctx, "team_members", "/team-members"+query(map[string]string{
		"per_page": strconv.Itoa(c.pageSize),
	}))
	if err != nil {
		return nil, err
	}
	return decodeList[models.TeamMember](arr)
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	arr, _, err := c.getList(ctx, "projects", "/projects"+query(map[string]string{
		"per_page": strconv.Itoa(c.pageSize),
	}))
	if err != nil {
		return nil, err
	}
	return decodeList[models.Project](arr)
}

// nameMapCache memoizes per-project ID-to-name maps for the lifetime of the
// process. Lookup tables like interaction types change rarely enough that a
// one-shot fetch is fine.
type nameMapCache struct {
	mu   sync.Mutex
	maps map[int]map[int]string
}

func newNameMapCache() *nameMapCache {
	return &nameMapCache{maps: make(map[int]map[int]string)}
}

func (n *nameMapCache) getOrFill(projectID int, fill func() map[int]string) map[int]string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if m, ok := n.maps[projectID]; ok {
		return m
	}
	m := fill()
	n.maps[projectID] = m
	return m
}

// InteractionTypeMap maps interaction type IDs to labels. A fetch failure
// yields an empty map; interaction-derived metrics degrade instead of the
// whole request failing.
func (c *Client) InteractionTypeMap(ctx context.Context, projectID int) map[int]string {
	return c.typeMaps.getOrFill(projectID, func() map[int]string {
		m := make(map[int]string)
		types, err := c.ListInteractionTypes(ctx)
		if err != nil {
			c.log.Error().Err(err).Msg("fetch interaction types failed")
			return m
		}
		for _, t := range types {
			if t.ID != 0 && t.Label() != "" {
				m[t.ID] = t.Label()
			}
		}
		return m
	})
}

// TeamMemberMap maps team member IDs to display names.
func (c *Client) TeamMemberMap(ctx context.Context, projectID int) map[int]string {
	return c.memberMaps.getOrFill(projectID, func() map[int]string {
		m := make(map[int]string)
		members, err := c.ListTeamMembers(ctx)
		if err != nil {
			c.log.Error().Err(err).Msg("fetch team members failed")
			return m
		}
		for _, tm := range members {
			if tm.ID == 0 {
				continue
			}
			name := trimJoin(tm.FirstName, tm.LastName)
			if name == "" {
				name = fmt.Sprintf("Team Member %d", tm.ID)
			}
			m[tm.ID] = name
		}
		return m
	})
}

func trimJoin(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
