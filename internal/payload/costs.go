package payload

import (
	"fmt"
	"strconv"

	"github.com/valyala/fastjson"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// DecodeAgentMetrics decodes a JSON array of agent metrics.
// A non-array body fails with domain.ErrInvalidResponse.
func DecodeAgentMetrics(body []byte) ([]domain.AgentMetric, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidResponse, newParseError(string(body), err))
	}
	if v.Type() != fastjson.TypeArray {
		return nil, fmt.Errorf("%w: expected array of metrics, got %s", domain.ErrInvalidResponse, v.Type())
	}

	elems := v.GetArray()
	metrics := make([]domain.AgentMetric, 0, len(elems))
	for _, el := range elems {
		if el.Type() != fastjson.TypeObject {
			continue
		}
		metrics = append(metrics, metricOf(el))
	}
	return metrics, nil
}

// metricOf reads one metric. Both snake-case and Pascal-case keys occur.
func metricOf(v *fastjson.Value) domain.AgentMetric {
	return domain.AgentMetric{
		AgentCode:   firstScalar(v, "agent_code", "AgentCode"),
		MetricCode:  firstScalar(v, "metric_code", "MetricCode"),
		MetricValue: floatField(v, "metric_value", "MetricValue"),
		Model:       firstScalar(v, "model", "Model"),
		Cost:        floatField(v, "cost", "Cost"),
		TokenCount:  int(floatField(v, "token_count", "TokenCount")),
		IntentCode:  firstScalar(v, "intent_code", "IntentCode"),
		UserName:    firstScalar(v, "user_name", "UserName"),
		RequestID:   firstScalar(v, "request_id", "RequestId"),
		SessionID:   firstScalar(v, "session_id", "SessionId"),
		Timestamp:   firstScalar(v, "timestamp", "DateTime"),
	}
}

// DecodeMonthlyCosts decodes monthly cost rows held under key, or a bare
// array of rows. Any other shape fails with domain.ErrInvalidResponse.
func DecodeMonthlyCosts(body []byte, key string) ([]domain.MonthlyCost, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidResponse, newParseError(string(body), err))
	}
	if v.Type() == fastjson.TypeObject {
		inner := v.Get(key)
		if inner == nil || inner.Type() == fastjson.TypeNull {
			return []domain.MonthlyCost{}, nil
		}
		v = inner
	}
	if v.Type() != fastjson.TypeArray {
		return nil, fmt.Errorf("%w: expected array of %s, got %s", domain.ErrInvalidResponse, key, v.Type())
	}

	elems := v.GetArray()
	costs := make([]domain.MonthlyCost, 0, len(elems))
	for _, el := range elems {
		if el.Type() != fastjson.TypeObject {
			continue
		}
		costs = append(costs, domain.MonthlyCost{
			AgentCode: firstScalar(el, "AgentCode", "agent_code"),
			UserName:  firstScalar(el, "UserName", "user_name"),
			Month:     firstScalar(el, "Month", "month"),
			TotalCost: floatField(el, "TotalCost", "total_cost"),
			UpdatedOn: firstScalar(el, "UpdatedOn", "updated_on"),
		})
	}
	return costs, nil
}

// floatField reads the first number or numeric string among keys,
// returning 0 when none parses.
func floatField(v *fastjson.Value, keys ...string) float64 {
	for _, k := range keys {
		f := v.Get(k)
		if f == nil {
			continue
		}
		switch f.Type() {
		case fastjson.TypeNumber:
			return f.GetFloat64()
		case fastjson.TypeString:
			if x, err := strconv.ParseFloat(string(f.GetStringBytes()), 64); err == nil {
				return x
			}
		}
	}
	return 0
}
