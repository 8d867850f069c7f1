package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// Ensure ContextService implements the interface.
var _ driving.ContextService = (*ContextService)(nil)

// BuildContextTree groups contexts by intent, type and version.
//
// Missing keys fall back to domain.NoIntent, domain.NoType and
// domain.NoVersion. Intent and type names sort ascending byte-wise;
// versions sort ascending by compare, LexicographicVersions when nil.
// Each leaf bucket is ordered newest first by ModifiedOn, then CreatedOn,
// then the epoch. Every input context lands in exactly one bucket.
func BuildContextTree(contexts []domain.Context, compare VersionComparator) *domain.ContextTree {
	if compare == nil {
		compare = LexicographicVersions
	}

	grouped := make(map[string]map[string]map[string][]domain.Context)
	for _, c := range contexts {
		intent := orDefault(c.Intent, domain.NoIntent)
		typ := orDefault(c.Type, domain.NoType)
		version := orDefault(c.ContextVersion, domain.NoVersion)

		if grouped[intent] == nil {
			grouped[intent] = make(map[string]map[string][]domain.Context)
		}
		if grouped[intent][typ] == nil {
			grouped[intent][typ] = make(map[string][]domain.Context)
		}
		grouped[intent][typ][version] = append(grouped[intent][typ][version], c)
	}

	tree := &domain.ContextTree{Intents: make([]domain.IntentGroup, 0, len(grouped))}
	for _, intent := range sortedKeys(grouped, nil) {
		types := grouped[intent]
		ig := domain.IntentGroup{Name: intent, Types: make([]domain.TypeGroup, 0, len(types))}

		for _, typ := range sortedKeys(types, nil) {
			versions := types[typ]
			tg := domain.TypeGroup{Name: typ, Versions: make([]domain.VersionGroup, 0, len(versions))}

			for _, version := range sortedKeys(versions, compare) {
				bucket := versions[version]
				sort.SliceStable(bucket, func(i, j int) bool {
					return bucket[i].SortTime().After(bucket[j].SortTime())
				})
				tg.Versions = append(tg.Versions, domain.VersionGroup{Version: version, Contexts: bucket})
			}
			ig.Types = append(ig.Types, tg)
		}
		tree.Intents = append(tree.Intents, ig)
	}
	return tree
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// sortedKeys returns the keys of m ordered by compare, byte-wise when nil.
func sortedKeys[V any](m map[string]V, compare VersionComparator) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	if compare == nil {
		sort.Strings(keys)
		return keys
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return compare(keys[i], keys[j]) < 0
	})
	return keys
}

// ContextService browses an agent's prompt contexts.
type ContextService struct {
	fetcher driven.ContextFetcher

	mu      sync.RWMutex
	compare VersionComparator
	history *HistoryService
}

// NewContextService creates a new context service ordering versions with compare.
// A nil compare uses LexicographicVersions.
func NewContextService(fetcher driven.ContextFetcher, compare VersionComparator) *ContextService {
	if compare == nil {
		compare = LexicographicVersions
	}
	return &ContextService{fetcher: fetcher, compare: compare}
}

// SetHistory sets the recorder for executed lookups.
func (s *ContextService) SetHistory(history *HistoryService) {
	s.history = history
}

// SetComparator replaces the version ordering, as after a settings reload.
func (s *ContextService) SetComparator(compare VersionComparator) {
	if compare == nil {
		compare = LexicographicVersions
	}
	s.mu.Lock()
	s.compare = compare
	s.mu.Unlock()
}

// Tree fetches an agent's contexts and groups them by intent, type and version.
func (s *ContextService) Tree(ctx context.Context, agentCode, versionID string) (*domain.ContextTree, error) {
	logger.Section("Context Tree")
	logger.Debug("Agent: %q, version: %q", agentCode, versionID)

	if agentCode == "" {
		return nil, fmt.Errorf("%w: agent code is required", domain.ErrInvalidInput)
	}

	params := map[string]string{"agent_code": agentCode}
	if versionID != "" {
		params["version_id"] = versionID
	}

	defer logger.Timing("context fetch", time.Now())
	contexts, err := s.fetcher.FetchContexts(ctx, agentCode, versionID)
	if err != nil {
		err = fmt.Errorf("fetch contexts: %w", err)
		s.history.Record(ctx, domain.HistoryContextTree, params, 0, err)
		return nil, err
	}

	s.mu.RLock()
	compare := s.compare
	s.mu.RUnlock()
	tree := BuildContextTree(contexts, compare)
	tree.AgentCode = agentCode
	logger.Debug("Grouped %d contexts into %d intents", tree.Len(), len(tree.Intents))

	s.history.Record(ctx, domain.HistoryContextTree, params, tree.Len(), nil)
	return tree, nil
}

// Versions summarises the stored versions of one prompt, newest first.
func (s *ContextService) Versions(ctx context.Context, promptCode string) ([]domain.VersionSummary, error) {
	logger.Section("Context Versions")
	logger.Debug("Prompt: %q", promptCode)

	if promptCode == "" {
		return nil, fmt.Errorf("%w: prompt code is required", domain.ErrInvalidInput)
	}

	params := map[string]string{"prompt_code": promptCode}

	contexts, err := s.fetcher.FetchContextHistory(ctx, promptCode)
	if err != nil {
		err = fmt.Errorf("fetch context history: %w", err)
		s.history.Record(ctx, domain.HistoryContextVersion, params, 0, err)
		return nil, err
	}

	summaries := SummarizeVersions(contexts)
	logger.Debug("Found %d versions across %d contexts", len(summaries), len(contexts))

	s.history.Record(ctx, domain.HistoryContextVersion, params, len(summaries), nil)
	return summaries, nil
}
