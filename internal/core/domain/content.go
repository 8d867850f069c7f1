package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ContentKind identifies which variant a Content value holds.
type ContentKind int

// Content variants observed in log payloads.
const (
	// ContentNone is an absent or null payload.
	ContentNone ContentKind = iota
	// ContentItems is an ordered sequence of iteration objects.
	ContentItems
	// ContentObject is a single JSON object.
	ContentObject
	// ContentText is a string, possibly holding encoded JSON.
	ContentText
)

// String returns the string representation.
func (k ContentKind) String() string {
	switch k {
	case ContentNone:
		return "none"
	case ContentItems:
		return "items"
	case ContentObject:
		return "object"
	case ContentText:
		return "text"
	default:
		return fmt.Sprintf("ContentKind(%d)", int(k))
	}
}

// IterationItem is one element of an items payload: a single model-call iteration.
// Scalar fields are kept as the strings the backend sent.
type IterationItem struct {
	Iteration     int    `json:"iteration"`
	Request       string `json:"request,omitempty"`
	Response      string `json:"response,omitempty"`
	Refinement    string `json:"refinement,omitempty"`
	Model         string `json:"model,omitempty"`
	Cost          string `json:"cost,omitempty"`
	AgentCode     string `json:"agent_code,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	ContextCode   string `json:"context_code,omitempty"`
	TokenCount    string `json:"token_count,omitempty"`
	AICallTime    string `json:"ai_call_time,omitempty"`
	IterationTime string `json:"iteration_time,omitempty"`
}

// Content is the tagged variant carried by LogRecord.Content.
// Exactly one variant is populated; Kind reports which.
// The zero value is ContentNone.
//
// The typed variant is a rendering view. When the payload was decoded from
// the wire, raw keeps its exact JSON so encoding loses nothing.
type Content struct {
	kind   ContentKind
	items  []IterationItem
	object map[string]any
	text   string
	raw    []byte
}

// NoContent returns an empty payload.
func NoContent() Content {
	return Content{kind: ContentNone}
}

// ItemsContent wraps an ordered sequence of iterations.
func ItemsContent(items []IterationItem) Content {
	return Content{kind: ContentItems, items: items}
}

// ObjectContent wraps a single decoded JSON object.
func ObjectContent(fields map[string]any) Content {
	if fields == nil {
		fields = map[string]any{}
	}
	return Content{kind: ContentObject, object: fields}
}

// TextContent wraps a string payload.
func TextContent(s string) Content {
	return Content{kind: ContentText, text: s}
}

// WithRaw returns c carrying raw as its JSON encoding. The caller must not
// modify raw afterwards.
func (c Content) WithRaw(raw []byte) Content {
	c.raw = raw
	return c
}

// Raw returns the JSON the payload was decoded from, or nil.
func (c Content) Raw() []byte {
	return c.raw
}

// Kind returns the populated variant.
func (c Content) Kind() ContentKind {
	return c.kind
}

// Items returns the iterations when c is ContentItems.
func (c Content) Items() ([]IterationItem, bool) {
	if c.kind != ContentItems {
		return nil, false
	}
	return c.items, true
}

// Object returns the decoded fields when c is ContentObject.
func (c Content) Object() (map[string]any, bool) {
	if c.kind != ContentObject {
		return nil, false
	}
	return c.object, true
}

// Text returns the raw string when c is ContentText.
func (c Content) Text() (string, bool) {
	if c.kind != ContentText {
		return "", false
	}
	return c.text, true
}

// StringField returns a non-empty scalar field of an object payload as text.
// Numbers and booleans are formatted, null is empty and nested values keep
// their JSON form, matching how iteration fields are read.
func (c Content) StringField(key string) (string, bool) {
	if c.kind != ContentObject {
		return "", false
	}
	s := ScalarString(c.object[key])
	if s == "" {
		return "", false
	}
	return s, true
}

// ScalarString renders a decoded JSON value as plain text.
func ScalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// IsEmpty reports whether the payload carries nothing worth rendering.
func (c Content) IsEmpty() bool {
	switch c.kind {
	case ContentItems:
		return len(c.items) == 0
	case ContentObject:
		return len(c.object) == 0
	case ContentText:
		return c.text == ""
	default:
		return true
	}
}

// MarshalJSON encodes the payload as received, or the populated variant in
// its natural JSON shape when there is no raw form.
func (c Content) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	switch c.kind {
	case ContentItems:
		if c.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.items)
	case ContentObject:
		return json.Marshal(c.object)
	case ContentText:
		return json.Marshal(c.text)
	default:
		return []byte("null"), nil
	}
}
