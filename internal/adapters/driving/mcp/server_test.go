package mcp

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrInvalidPorts)
	})

	t.Run("missing log service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingLogService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(validPorts())
		require.NoError(t, err)
		require.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("missing inference service", func(t *testing.T) {
		ports := validPorts()
		ports.Inference = nil
		assert.ErrorIs(t, ports.Validate(), ErrMissingInferenceService)
	})

	t.Run("missing context service", func(t *testing.T) {
		ports := validPorts()
		ports.Contexts = nil
		assert.ErrorIs(t, ports.Validate(), ErrMissingContextService)
	})

	t.Run("history is optional", func(t *testing.T) {
		assert.NoError(t, validPorts().Validate())
	})

	t.Run("all ports set", func(t *testing.T) {
		ports := validPorts()
		ports.History = &mockHistoryService{}
		assert.NoError(t, ports.Validate())
	})
}

// blockingContextService holds each Tree call until release is closed.
type blockingContextService struct {
	mockContextService
	started chan string
	release chan struct{}
}

func (m *blockingContextService) Tree(ctx context.Context, agentCode, _ string) (*domain.ContextTree, error) {
	m.started <- agentCode
	select {
	case <-m.release:
		return &domain.ContextTree{AgentCode: agentCode}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestServer_OverlappingCallsAreIndependent(t *testing.T) {
	contexts := &blockingContextService{
		started: make(chan string, 2),
		release: make(chan struct{}),
	}
	ports := validPorts()
	ports.Contexts = contexts
	server := newTestServer(t, ports, testNow)

	type result struct {
		out ContextTreeOutput
		err error
	}
	first := make(chan result, 1)
	second := make(chan result, 1)

	go func() {
		_, out, err := server.handleContextTree(context.Background(), nil, ContextTreeInput{AgentCode: "BILLING"})
		first <- result{out, err}
	}()
	require.Equal(t, "BILLING", <-contexts.started)

	go func() {
		_, out, err := server.handleContextTree(context.Background(), nil, ContextTreeInput{AgentCode: "SUPPORT"})
		second <- result{out, err}
	}()
	require.Equal(t, "SUPPORT", <-contexts.started)

	close(contexts.release)

	a, b := <-first, <-second
	require.NoError(t, a.err)
	require.NoError(t, b.err)
	assert.Equal(t, "BILLING", a.out.Tree.AgentCode)
	assert.Equal(t, "SUPPORT", b.out.Tree.AgentCode)
}

func TestServer_CallFollowsRequestContext(t *testing.T) {
	contexts := &blockingContextService{
		started: make(chan string, 1),
		release: make(chan struct{}),
	}
	ports := validPorts()
	ports.Contexts = contexts
	server := newTestServer(t, ports, testNow)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := server.handleContextTree(ctx, nil, ContextTreeInput{AgentCode: "BILLING"})
		done <- err
	}()
	<-contexts.started
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSearchLogsInput_SourceSchemaNamesKnownSources(t *testing.T) {
	field, ok := reflect.TypeOf(SearchLogsInput{}).FieldByName("Source")
	require.True(t, ok)
	schema := field.Tag.Get("jsonschema")
	for _, src := range domain.AllLogSources() {
		assert.Contains(t, schema, src.String())
	}
}
