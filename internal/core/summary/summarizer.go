// Package summary names and describes clusters of harmonized systems.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/core/common"
	"github.com/agenthands/fuxi/internal/core/model"
	"github.com/agenthands/fuxi/internal/llm"
	"github.com/agenthands/fuxi/internal/logging"
)

const (
	DefaultSummaryPrompt = `Summarize what the following group of enterprise systems does together, in at most two sentences.
Systems ("label | domain | state"):
%s
Respond with JSON only: {"summary": "<text>"}`

	DefaultNamePrompt = `Give a short name (at most four words) for a group of enterprise systems described as:
%s
Respond with JSON only: {"name": "<name>"}`

	chunkSize = 20
)

// Summarizer uses an LLM when one is configured and falls back to
// deterministic names and summaries otherwise.
type Summarizer struct {
	LLM     llm.LLMClient
	Prompts config.PromptsConfig
}

func NewSummarizer(llmClient llm.LLMClient, prompts config.PromptsConfig) *Summarizer {
	if prompts.ClusterSummary == "" {
		prompts.ClusterSummary = DefaultSummaryPrompt
	}
	if prompts.ClusterName == "" {
		prompts.ClusterName = DefaultNamePrompt
	}
	return &Summarizer{
		LLM:     llmClient,
		Prompts: prompts,
	}
}

// Describe names and summarizes a cluster. LLM failures fall back to the
// deterministic name and summary and are only logged.
func (s *Summarizer) Describe(ctx context.Context, systems []model.HarmonizedSystem) model.Cluster {
	log := logging.FromContext(ctx)
	cluster := model.Cluster{
		Name:    FallbackName(systems),
		Summary: FallbackSummary(systems),
		Systems: systems,
	}
	if s.LLM == nil {
		return cluster
	}

	summary, err := s.SummarizeCluster(ctx, systems)
	if err != nil {
		log.Warn().Err(err).Str("cluster", cluster.Name).Msg("Failed to summarize cluster")
		return cluster
	}
	cluster.Summary = summary

	name, err := s.NameCluster(ctx, summary)
	if err != nil {
		log.Warn().Err(err).Str("cluster", cluster.Name).Msg("Failed to name cluster")
		return cluster
	}
	if name != "" {
		cluster.Name = name
	}
	return cluster
}

// SummarizeCluster asks the LLM for a summary. Clusters larger than one
// prompt are summarized in chunks and the chunk summaries reduced again.
func (s *Summarizer) SummarizeCluster(ctx context.Context, systems []model.HarmonizedSystem) (string, error) {
	lines := make([]string, len(systems))
	for i, n := range systems {
		lines[i] = fmt.Sprintf("- %s | %s | %s", labelOf(n), n.Domain, n.State)
	}
	return s.reduce(ctx, lines)
}

func (s *Summarizer) reduce(ctx context.Context, lines []string) (string, error) {
	if len(lines) <= chunkSize {
		prompt := fmt.Sprintf(s.Prompts.ClusterSummary, strings.Join(lines, "\n"))
		response, err := s.LLM.Generate(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("failed to generate cluster summary: %w", err)
		}

		result, err := common.ParseJSON[model.ClusterSummary](response)
		if err == nil {
			return strings.TrimSpace(result.Summary), nil
		}
		return strings.TrimSpace(response), nil
	}

	var partial []string
	for i := 0; i < len(lines); i += chunkSize {
		end := min(i+chunkSize, len(lines))
		summary, err := s.reduce(ctx, lines[i:end])
		if err != nil {
			logging.FromContext(ctx).Debug().Err(err).Int("chunk", i/chunkSize).Msg("Skipping chunk summary")
			continue
		}
		partial = append(partial, fmt.Sprintf("- Part %d | %s", i/chunkSize+1, summary))
	}
	if len(partial) == 0 {
		return "", fmt.Errorf("failed to summarize any chunk of %d systems", len(lines))
	}
	return s.reduce(ctx, partial)
}

// NameCluster asks the LLM for a short name for a summarized cluster.
func (s *Summarizer) NameCluster(ctx context.Context, summary string) (string, error) {
	prompt := fmt.Sprintf(s.Prompts.ClusterName, summary)
	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate cluster name: %w", err)
	}

	result, err := common.ParseJSON[model.ClusterName](response)
	if err == nil {
		return strings.TrimSpace(result.Name), nil
	}
	// a bare name, possibly quoted
	return strings.Trim(strings.TrimSpace(response), `"`), nil
}

// FallbackName is the dominant domain of the cluster, ties broken
// alphabetically, or the first label when no system has a domain.
func FallbackName(systems []model.HarmonizedSystem) string {
	counts := make(map[string]int)
	for _, n := range systems {
		if n.Domain != "" {
			counts[n.Domain]++
		}
	}
	if len(counts) == 0 {
		if len(systems) == 0 {
			return ""
		}
		return labelOf(systems[0]) + " cluster"
	}

	domains := make([]string, 0, len(counts))
	for d := range counts {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		if counts[domains[i]] != counts[domains[j]] {
			return counts[domains[i]] > counts[domains[j]]
		}
		return domains[i] < domains[j]
	})
	return domains[0]
}

// FallbackSummary lists the member labels.
func FallbackSummary(systems []model.HarmonizedSystem) string {
	labels := make([]string, len(systems))
	for i, n := range systems {
		labels[i] = labelOf(n)
	}
	return fmt.Sprintf("%d systems: %s", len(systems), strings.Join(labels, ", "))
}

func labelOf(n model.HarmonizedSystem) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}
