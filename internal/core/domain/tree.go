package domain

import "strings"

// Grouping fallbacks for contexts missing a key. These are display labels only.
const (
	NoIntent  = "No Intent"
	NoType    = "No Type"
	NoVersion = "No Version"
)

// InferenceTree is an agent invocation with the inference calls correlated to it.
type InferenceTree struct {
	// Agent is the parent agent-invocation log.
	Agent LogRecord `json:"agent"`

	// AgentCode is the correlation agent code.
	AgentCode string `json:"agentCode"`

	// Source is the parent's source tag.
	Source string `json:"source"`

	// Inference holds the matched inference logs, oldest first.
	Inference []LogRecord `json:"inference"`
}

// IsEmpty reports whether no inference logs were correlated.
func (t InferenceTree) IsEmpty() bool {
	return len(t.Inference) == 0
}

// ContextTree groups one agent's contexts by intent, type and version.
type ContextTree struct {
	AgentCode string        `json:"agentCode,omitempty"`
	Intents   []IntentGroup `json:"intents"`
}

// IntentGroup is the top tree level.
type IntentGroup struct {
	Name  string      `json:"name"`
	Types []TypeGroup `json:"types"`
}

// TypeGroup is the middle tree level.
type TypeGroup struct {
	Name     string         `json:"name"`
	Versions []VersionGroup `json:"versions"`
}

// VersionGroup is a leaf bucket of contexts, newest first.
type VersionGroup struct {
	Version  string    `json:"version"`
	Contexts []Context `json:"contexts"`
}

// Len returns the number of contexts across all leaf buckets.
func (t ContextTree) Len() int {
	n := 0
	for _, ig := range t.Intents {
		for _, tg := range ig.Types {
			for _, vg := range tg.Versions {
				n += len(vg.Contexts)
			}
		}
	}
	return n
}

// Paths returns every group node in display order, parents before children.
func (t ContextTree) Paths() []NodePath {
	var paths []NodePath
	for _, ig := range t.Intents {
		ip := NodePath{Intent: ig.Name}
		paths = append(paths, ip)
		for _, tg := range ig.Types {
			tp := ip.Child(tg.Name)
			paths = append(paths, tp)
			for _, vg := range tg.Versions {
				paths = append(paths, tp.Child(vg.Version))
			}
		}
	}
	return paths
}

// Bucket returns the leaf group addressed by a version-level path.
func (t ContextTree) Bucket(p NodePath) (*VersionGroup, bool) {
	if p.Level() != LevelVersion {
		return nil, false
	}
	for i := range t.Intents {
		if t.Intents[i].Name != p.Intent {
			continue
		}
		for j := range t.Intents[i].Types {
			if t.Intents[i].Types[j].Name != p.Type {
				continue
			}
			for k := range t.Intents[i].Types[j].Versions {
				if t.Intents[i].Types[j].Versions[k].Version == p.Version {
					return &t.Intents[i].Types[j].Versions[k], true
				}
			}
		}
	}
	return nil, false
}

// NodeLevel is the depth of a context tree node.
type NodeLevel int

// Tree levels, root excluded.
const (
	LevelNone NodeLevel = iota
	LevelIntent
	LevelType
	LevelVersion
)

// Path separator and the escape that makes it literal inside a segment.
const (
	pathSeparator = '/'
	pathEscape    = '\\'
)

// NodePath addresses a group node by its grouping keys.
// Unused trailing segments are empty.
type NodePath struct {
	Intent  string
	Type    string
	Version string
}

// ParseNodePath reads "intent", "intent/type" or "intent/type/version".
// A backslash makes the next character literal, so `a\/b` names the
// segment "a/b". Segments are trimmed and must not be empty.
func ParseNodePath(s string) (NodePath, bool) {
	segments, ok := splitPath(s)
	if !ok || len(segments) > 3 {
		return NodePath{}, false
	}
	var p NodePath
	for i, seg := range segments {
		if seg == "" {
			return NodePath{}, false
		}
		switch i {
		case 0:
			p.Intent = seg
		case 1:
			p.Type = seg
		case 2:
			p.Version = seg
		}
	}
	return p, true
}

// splitPath splits s on unescaped separators and unescapes each segment.
// A trailing lone escape is malformed.
func splitPath(s string) ([]string, bool) {
	var (
		segments []string
		cur      strings.Builder
	)
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case pathEscape:
			if i+1 == len(runes) {
				return nil, false
			}
			i++
			cur.WriteRune(runes[i])
		case pathSeparator:
			segments = append(segments, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(runes[i])
		}
	}
	return append(segments, strings.TrimSpace(cur.String())), true
}

// escapeSegment makes separators and escapes in seg literal.
func escapeSegment(seg string) string {
	if !strings.ContainsAny(seg, string([]rune{pathSeparator, pathEscape})) {
		return seg
	}
	var b strings.Builder
	for _, r := range seg {
		if r == pathSeparator || r == pathEscape {
			b.WriteRune(pathEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Level returns the depth addressed by p.
func (p NodePath) Level() NodeLevel {
	switch {
	case p.Intent == "":
		return LevelNone
	case p.Type == "":
		return LevelIntent
	case p.Version == "":
		return LevelType
	default:
		return LevelVersion
	}
}

// Parent returns the enclosing group path and false at the top level.
func (p NodePath) Parent() (NodePath, bool) {
	switch p.Level() {
	case LevelVersion:
		return NodePath{Intent: p.Intent, Type: p.Type}, true
	case LevelType:
		return NodePath{Intent: p.Intent}, true
	default:
		return NodePath{}, false
	}
}

// Child returns the path one level below p named name.
func (p NodePath) Child(name string) NodePath {
	switch p.Level() {
	case LevelNone:
		return NodePath{Intent: name}
	case LevelIntent:
		return NodePath{Intent: p.Intent, Type: name}
	default:
		return NodePath{Intent: p.Intent, Type: p.Type, Version: name}
	}
}

// Name returns the deepest populated segment.
func (p NodePath) Name() string {
	switch p.Level() {
	case LevelVersion:
		return p.Version
	case LevelType:
		return p.Type
	default:
		return p.Intent
	}
}

// String renders p as slash-separated segments in the form ParseNodePath reads.
func (p NodePath) String() string {
	sep := string(pathSeparator)
	switch p.Level() {
	case LevelVersion:
		return escapeSegment(p.Intent) + sep + escapeSegment(p.Type) + sep + escapeSegment(p.Version)
	case LevelType:
		return escapeSegment(p.Intent) + sep + escapeSegment(p.Type)
	default:
		return escapeSegment(p.Intent)
	}
}
