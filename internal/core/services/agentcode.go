package services

import (
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/payload"
)

const agentCodeField = "agent_code"

// ExtractAgentCode returns the agent code correlating rec to an agent invocation.
//
// Items payloads are scanned in order for the first non-empty agent_code.
// Object payloads are read directly. Text payloads are parsed as JSON and
// the parsed value is inspected with the same rules. When nothing is found
// the result is domain.UnknownAgentCode.
//
// The error is non-nil only when a text payload is not valid JSON; the code
// is still domain.UnknownAgentCode in that case, so callers may ignore it.
func ExtractAgentCode(rec domain.LogRecord) (string, error) {
	c := rec.Content
	if text, ok := c.Text(); ok {
		parsed, err := payload.ParseText(text)
		if err != nil {
			return domain.UnknownAgentCode, err
		}
		c = parsed
	}
	return agentCodeOf(c), nil
}

// AgentCodeOf is ExtractAgentCode with parse failures discarded.
func AgentCodeOf(rec domain.LogRecord) string {
	code, _ := ExtractAgentCode(rec)
	return code
}

func agentCodeOf(c domain.Content) string {
	switch c.Kind() {
	case domain.ContentItems:
		items, _ := c.Items()
		for _, it := range items {
			if it.AgentCode != "" {
				return it.AgentCode
			}
		}
	case domain.ContentObject:
		if code, ok := c.StringField(agentCodeField); ok {
			return code
		}
	}
	return domain.UnknownAgentCode
}
