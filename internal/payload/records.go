package payload

import (
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// DecodeLogRecords decodes a JSON array of log records.
// A non-array body fails with domain.ErrInvalidResponse.
func DecodeLogRecords(body []byte) ([]domain.LogRecord, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidResponse, newParseError(string(body), err))
	}
	if v.Type() != fastjson.TypeArray {
		return nil, fmt.Errorf("%w: expected array of logs, got %s", domain.ErrInvalidResponse, v.Type())
	}

	elems := v.GetArray()
	records := make([]domain.LogRecord, 0, len(elems))
	for _, el := range elems {
		if el.Type() != fastjson.TypeObject {
			continue
		}
		records = append(records, logRecordOf(el))
	}
	return records, nil
}

// logRecordOf reads one record. Snake-case keys are accepted as fallbacks.
func logRecordOf(v *fastjson.Value) domain.LogRecord {
	return domain.LogRecord{
		ID:         firstScalar(v, "id", "_id"),
		Source:     scalar(v.Get("source")),
		SessionID:  firstScalar(v, "sessionId", "session_id"),
		UserID:     firstScalar(v, "userId", "user_id"),
		RequestID:  firstScalar(v, "requestId", "request_id"),
		CreatedOn:  firstScalar(v, "createdOn", "created_on"),
		ModifiedOn: firstScalar(v, "modifiedOn", "modified_on"),
		Content:    ContentOf(v.Get("content")),
	}
}

// DecodeContexts decodes a JSON array of prompt contexts.
// A non-array body fails with domain.ErrInvalidResponse.
func DecodeContexts(body []byte) ([]domain.Context, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidResponse, newParseError(string(body), err))
	}
	if v.Type() != fastjson.TypeArray {
		return nil, fmt.Errorf("%w: expected array of contexts, got %s", domain.ErrInvalidResponse, v.Type())
	}

	elems := v.GetArray()
	contexts := make([]domain.Context, 0, len(elems))
	for _, el := range elems {
		if el.Type() != fastjson.TypeObject {
			continue
		}
		contexts = append(contexts, contextOf(el))
	}
	return contexts, nil
}

func contextOf(v *fastjson.Value) domain.Context {
	c := domain.Context{
		ID:               firstScalar(v, "id", "_id"),
		PromptCode:       scalar(v.Get("PromptCode")),
		ParentPromptCode: scalar(v.Get("ParentPromptCode")),
		AgentCode:        scalar(v.Get("AgentCode")),
		Type:             scalar(v.Get("Type")),
		Intent:           scalar(v.Get("Intent")),
		VersionID:        scalar(v.Get("VersionId")),
		ContextVersion:   scalar(v.Get("ContextVersion")),
		Content:          scalar(v.Get("Content")),
		Default:          boolField(v, "Default"),
		Latest:           boolField(v, "Latest"),
		CreatedBy:        scalar(v.Get("CreatedBy")),
		ModifiedBy:       scalar(v.Get("ModifiedBy")),
		CreatedOn:        scalar(v.Get("CreatedOn")),
		ModifiedOn:       scalar(v.Get("ModifiedOn")),
	}
	for _, e := range v.GetArray("Entity") {
		if e.Type() != fastjson.TypeObject {
			continue
		}
		c.Entity = append(c.Entity, domain.EntityPair{
			Key:   scalar(e.Get("Key")),
			Value: scalar(e.Get("Value")),
		})
	}
	return c
}
