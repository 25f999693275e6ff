package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/fuxi/internal/core/classify"
	"github.com/agenthands/fuxi/internal/core/common"
	"github.com/agenthands/fuxi/internal/core/keys"
	"github.com/agenthands/fuxi/internal/core/model"
	fuxierr "github.com/agenthands/fuxi/internal/errors"
	"github.com/agenthands/fuxi/internal/llm"
	"github.com/agenthands/fuxi/internal/logging"
)

// DefaultAIPrompt receives the system list as its only argument.
const DefaultAIPrompt = `You are an enterprise architect. Given the systems below, list likely integrations between them that are not already listed.
Systems (one per line, "name | domain | existing downstream systems"):
%s
Respond with JSON only, in the form:
{"connections": [{"source": "<system name>", "target": "<system name>", "confidence": <0..1>, "rationale": "<short reason>"}]}`

// AIInferer asks an LLM for integrations between the harmonized systems.
type AIInferer struct {
	LLM    llm.LLMClient
	Prompt string
	// EdgeThreshold is the similarity needed to map a returned name onto a
	// system key.
	EdgeThreshold float64
}

func NewAIInferer(client llm.LLMClient, prompt string, edgeThreshold float64) *AIInferer {
	if prompt == "" {
		prompt = DefaultAIPrompt
	}
	return &AIInferer{
		LLM:           client,
		Prompt:        prompt,
		EdgeThreshold: edgeThreshold,
	}
}

// Suggest returns LLM-proposed connections whose endpoints resolve to known
// systems, that are not self loops or existing edges, and whose confidence is
// at least threshold.
func (a *AIInferer) Suggest(ctx context.Context, graph model.HarmonizedGraph, threshold float64) ([]model.ConnectionSuggestion, error) {
	if a == nil || a.LLM == nil {
		return nil, fmt.Errorf("ai inference: %w", fuxierr.ErrUnavailable)
	}
	log := logging.FromContext(ctx)

	prompt := fmt.Sprintf(a.Prompt, describeSystems(graph))
	response, err := a.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate connections: %w", err)
	}

	result, err := common.ParseJSON[model.AIConnections](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connections: %w", err)
	}

	known := make([]string, len(graph.Nodes))
	for i, n := range graph.Nodes {
		known[i] = n.ID
	}
	resolver := keys.BuildResolver(known, a.EdgeThreshold)

	existing := make(map[[2]string]struct{}, len(graph.Edges))
	for _, e := range graph.Edges {
		existing[pair(e.Source, e.Target)] = struct{}{}
	}

	seen := make(map[[2]string]struct{})
	out := []model.ConnectionSuggestion{}
	for _, c := range result.Connections {
		src, _, okS := resolver.Resolve(c.Source)
		dst, _, okT := resolver.Resolve(c.Target)
		if !okS || !okT {
			log.Debug().Str("source", c.Source).Str("target", c.Target).Msg("Dropping suggestion with unknown system")
			continue
		}
		if src == dst {
			continue
		}
		p := pair(src, dst)
		if _, ok := existing[p]; ok {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		conf := classify.Round2(classify.Clamp(c.Confidence))
		if conf < threshold {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, model.ConnectionSuggestion{
			Source:     src,
			Target:     dst,
			Confidence: conf,
			Rationale:  strings.TrimSpace(c.Rationale),
		})
	}

	SortSuggestions(out)
	log.Info().Int("returned", len(result.Connections)).Int("accepted", len(out)).Msg("AI inference complete")
	return out, nil
}

func describeSystems(graph model.HarmonizedGraph) string {
	downstream := make(map[string][]string)
	for _, e := range graph.Edges {
		downstream[e.Source] = append(downstream[e.Source], e.Target)
	}

	var b strings.Builder
	for _, n := range graph.Nodes {
		fmt.Fprintf(&b, "- %s | %s | %s\n", nameOf(n), n.Domain, strings.Join(downstream[n.ID], ", "))
	}
	return b.String()
}
