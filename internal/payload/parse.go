package payload

import (
	"fmt"
	"strconv"

	"github.com/valyala/fastjson"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// maxSnippet bounds the input echoed back in a ParseError.
const maxSnippet = 64

var parsers fastjson.ParserPool

// ParseError reports text that is not valid JSON.
type ParseError struct {
	// Input is the start of the offending text.
	Input string

	// Err is the underlying parser error.
	Err error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse json %q: %v", e.Input, e.Err)
}

// Unwrap returns the parser error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(s string, err error) *ParseError {
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "..."
	}
	return &ParseError{Input: s, Err: err}
}

// ParseText decodes s as JSON into a Content variant.
// Arrays become items, objects become objects, strings become text and
// null becomes none. Other scalars become text holding their JSON form.
// Invalid JSON yields a *ParseError and ContentNone.
func ParseText(s string) (domain.Content, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.Parse(s)
	if err != nil {
		return domain.NoContent(), newParseError(s, err)
	}
	return ContentOf(v), nil
}

// ContentOf converts a parsed value into a Content variant.
// Arrays, objects and non-string scalars keep their exact JSON as the raw
// form. The result does not reference v, so v's parser may be reused.
func ContentOf(v *fastjson.Value) domain.Content {
	if v == nil {
		return domain.NoContent()
	}
	switch v.Type() {
	case fastjson.TypeNull:
		return domain.NoContent()
	case fastjson.TypeArray:
		return domain.ItemsContent(itemsOf(v)).WithRaw(v.MarshalTo(nil))
	case fastjson.TypeObject:
		fields, _ := valueOf(v).(map[string]any)
		return domain.ObjectContent(fields).WithRaw(v.MarshalTo(nil))
	case fastjson.TypeString:
		return domain.TextContent(string(v.GetStringBytes()))
	default:
		return domain.TextContent(v.String()).WithRaw(v.MarshalTo(nil))
	}
}

// itemsOf decodes the object elements of an array. Non-object elements
// carry no iteration fields and are left out of the typed view.
func itemsOf(v *fastjson.Value) []domain.IterationItem {
	elems := v.GetArray()
	items := make([]domain.IterationItem, 0, len(elems))
	for _, el := range elems {
		if el.Type() != fastjson.TypeObject {
			continue
		}
		items = append(items, domain.IterationItem{
			Iteration:     intField(el, "iteration"),
			Request:       scalar(el.Get("request")),
			Response:      scalar(el.Get("response")),
			Refinement:    scalar(el.Get("refinement")),
			Model:         scalar(el.Get("model")),
			Cost:          scalar(el.Get("cost")),
			AgentCode:     scalar(el.Get("agent_code")),
			UserID:        scalar(el.Get("user_id")),
			ContextCode:   scalar(el.Get("context_code")),
			TokenCount:    scalar(el.Get("token_count")),
			AICallTime:    scalar(el.Get("ai_call_time")),
			IterationTime: scalar(el.Get("iteration_time")),
		})
	}
	return items
}

// scalar renders v as a plain string. Strings are unquoted, null and
// missing values are empty, anything else keeps its JSON form.
func scalar(v *fastjson.Value) string {
	if v == nil {
		return ""
	}
	switch v.Type() {
	case fastjson.TypeNull:
		return ""
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	default:
		return v.String()
	}
}

// intField reads a number or numeric string, returning 0 otherwise.
func intField(v *fastjson.Value, key string) int {
	f := v.Get(key)
	if f == nil {
		return 0
	}
	switch f.Type() {
	case fastjson.TypeNumber:
		if n, err := f.Int(); err == nil {
			return n
		}
		if x, err := f.Float64(); err == nil {
			return int(x)
		}
	case fastjson.TypeString:
		if n, err := strconv.Atoi(string(f.GetStringBytes())); err == nil {
			return n
		}
	}
	return 0
}

// boolField reads a boolean or a "true"/"false" string.
func boolField(v *fastjson.Value, key string) bool {
	f := v.Get(key)
	if f == nil {
		return false
	}
	switch f.Type() {
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeString:
		b, _ := strconv.ParseBool(string(f.GetStringBytes()))
		return b
	default:
		return false
	}
}

// valueOf converts v into plain Go values, as encoding/json would.
func valueOf(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		m := make(map[string]any)
		v.GetObject().Visit(func(key []byte, child *fastjson.Value) {
			m[string(key)] = valueOf(child)
		})
		return m
	case fastjson.TypeArray:
		elems := v.GetArray()
		out := make([]any, len(elems))
		for i, el := range elems {
			out[i] = valueOf(el)
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}

// firstScalar returns the first non-empty scalar among keys.
func firstScalar(v *fastjson.Value, keys ...string) string {
	for _, k := range keys {
		if s := scalar(v.Get(k)); s != "" {
			return s
		}
	}
	return ""
}
