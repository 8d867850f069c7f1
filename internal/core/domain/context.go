package domain

import "time"

// EntityPair is one key/value entity attached to a context.
type EntityPair struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// Context is a stored prompt fragment belonging to an agent.
// Field names follow the backend's PascalCase document shape.
type Context struct {
	ID               string       `json:"id,omitempty"`
	PromptCode       string       `json:"PromptCode"`
	ParentPromptCode string       `json:"ParentPromptCode,omitempty"`
	AgentCode        string       `json:"AgentCode,omitempty"`
	Type             string       `json:"Type,omitempty"`
	Intent           string       `json:"Intent,omitempty"`
	VersionID        string       `json:"VersionId,omitempty"`
	ContextVersion   string       `json:"ContextVersion,omitempty"`
	Entity           []EntityPair `json:"Entity,omitempty"`
	Content          string       `json:"Content"`
	Default          bool         `json:"Default"`
	Latest           bool         `json:"Latest"`
	CreatedBy        string       `json:"CreatedBy,omitempty"`
	ModifiedBy       string       `json:"ModifiedBy,omitempty"`
	CreatedOn        string       `json:"CreatedOn,omitempty"`
	ModifiedOn       string       `json:"ModifiedOn,omitempty"`
}

// SortTime returns ModifiedOn, falling back to CreatedOn, then EpochZero.
// An unparseable timestamp counts as absent.
func (c Context) SortTime() time.Time {
	if t, ok := ParseTimestamp(c.ModifiedOn); ok {
		return t
	}
	if t, ok := ParseTimestamp(c.CreatedOn); ok {
		return t
	}
	return EpochZero
}

// VersionSummary describes one distinct ContextVersion in a prompt's history.
type VersionSummary struct {
	// Version is the ContextVersion, or UnknownVersion when empty.
	Version string `json:"version"`

	// Count is the number of contexts carrying this version.
	Count int `json:"count"`

	// ModifiedOn is taken from the first context of the version, as returned.
	ModifiedOn string `json:"modifiedOn,omitempty"`

	// ModifiedBy is taken from the first context of the version, as returned.
	ModifiedBy string `json:"modifiedBy,omitempty"`

	// Contexts holds the contexts of this version in backend order.
	Contexts []Context `json:"contexts"`
}

// UnknownVersion labels history entries without a ContextVersion.
const UnknownVersion = "Unknown"
