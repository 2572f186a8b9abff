// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/meshintel/inventor-scout/pkg/types"
)

// strategyPromptTmpl asks the model how to locate one inventor, given the
// patent context. The response is a single JSON object.
var strategyPromptTmpl = template.Must(template.New("strategy").Parse(`You are an expert contact research assistant. Analyze the inventor below and produce a strategy for finding their professional contact information.

Patent Information:
- Patent Number: {{.PatentNumber}}
- Title: {{.Title}}
- Inventor: {{.Inventor}}

Analysis framework:
1. Name analysis: how common is the name? Unique names are easier to find.
2. Technology context: a software patent suggests a code-hosting presence; a biotech patent points toward academic profiles.
3. Company context: inventors at large corporations are harder to reach directly than those at universities or startups.

Respond with a single valid JSON object and nothing else, with these keys:
- "search_strategy": a 1-2 sentence explanation of your reasoning.
- "search_terms": a list of 2-3 targeted web search queries for finding this person's professional profile.
- "email_suggestions": a list of 3-5 plausible email patterns (e.g. "j.doe@company.com").
- "repo_search_terms": a list of likely code-hosting usernames; empty if the technology is not software-related.
- "confidence_score": a float between 0.0 and 1.0 for the likelihood of finding this person.

Example:
{"search_strategy": "Uncommon name with a recent software patent; profile search should succeed.", "search_terms": ["Jane Q. Doe battery management engineer", "Jane Doe Acme patents"], "email_suggestions": ["jane.doe@acme.com", "jdoe@acme.com"], "repo_search_terms": ["janeqdoe"], "confidence_score": 0.7}
`))

// selectionPromptTmpl asks the model to pick the best profile URL from raw
// search results, or decline. Post URLs are transformed to profile URLs.
var selectionPromptTmpl = template.Must(template.New("selection").Parse(`You are an expert data analyst. Given a JSON list of search engine results, find the single most relevant professional-profile URL for the target person.

Target person: {{.Inventor}}
Patent context: {{.Title}} ({{.PatentNumber}})

Search results (JSON):
{{.Candidates}}

Instructions:
1. Each result has a url, a title, and a snippet. The title and snippet are the strongest identity clues.
2. If a link points to a post or article by the target person rather than their profile, transform it into the corresponding profile URL (e.g. a path containing /posts/jane-doe-12345_activity becomes /in/jane-doe-12345).
3. A direct profile link is usually the best choice unless a post link has much stronger contextual evidence.
4. If no result plausibly belongs to the target person, decline.

Respond with a single valid JSON object and nothing else, with these keys:
- "profile_url": the full profile URL, or null if no relevant URL was found.
- "confidence": a float between 0.0 and 1.0.
- "reasoning": a 1-2 sentence explanation referencing the title or snippet.

Example:
{"profile_url": "https://www.linkedin.com/in/jane-doe-12345", "confidence": 0.9, "reasoning": "The first result's title 'Jane Doe - Engineer at Acme' directly matches the target."}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// StrategyResult is the validated output of the strategy round.
type StrategyResult struct {
	Strategy         string   `json:"search_strategy"`
	SearchTerms      []string `json:"search_terms"`
	EmailSuggestions []string `json:"email_suggestions"`
	RepoSearchTerms  []string `json:"repo_search_terms"`
	Confidence       float64  `json:"confidence_score"`
}

// SelectionResult is the validated output of the selection round. An empty
// ProfileURL means the model declined.
type SelectionResult struct {
	ProfileURL string  `json:"profile_url"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Generator produces the two text-generation rounds of an inventor analysis.
type Generator interface {
	Strategy(ctx context.Context, rec types.PatentRecord, inventor string) (StrategyResult, error)
	Select(ctx context.Context, rec types.PatentRecord, inventor string, candidates []types.SearchCandidate) (SelectionResult, error)
}

// ClaudeGenerator implements Generator against the Claude Messages API.
type ClaudeGenerator struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Strategy runs the first round: strategy text, search terms, and contact
// heuristics for one inventor.
func (c *ClaudeGenerator) Strategy(ctx context.Context, rec types.PatentRecord, inventor string) (StrategyResult, error) {
	var buf bytes.Buffer
	err := strategyPromptTmpl.Execute(&buf, struct {
		PatentNumber, Title, Inventor string
	}{rec.PatentNumber, rec.Title, inventor})
	if err != nil {
		return StrategyResult{}, fmt.Errorf("rendering strategy prompt: %w", err)
	}

	var out StrategyResult
	if err := c.complete(ctx, buf.String(), &out); err != nil {
		return StrategyResult{}, err
	}
	return out, nil
}

// Select runs the second round: pick or decline a profile URL from the
// candidate list.
func (c *ClaudeGenerator) Select(ctx context.Context, rec types.PatentRecord, inventor string, candidates []types.SearchCandidate) (SelectionResult, error) {
	candJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return SelectionResult{}, fmt.Errorf("marshaling candidates: %w", err)
	}

	var buf bytes.Buffer
	err = selectionPromptTmpl.Execute(&buf, struct {
		PatentNumber, Title, Inventor, Candidates string
	}{rec.PatentNumber, rec.Title, inventor, string(candJSON)})
	if err != nil {
		return SelectionResult{}, fmt.Errorf("rendering selection prompt: %w", err)
	}

	var out SelectionResult
	if err := c.complete(ctx, buf.String(), &out); err != nil {
		return SelectionResult{}, err
	}
	return out, nil
}

// complete sends one prompt and unmarshals the model's JSON reply into out.
func (c *ClaudeGenerator) complete(ctx context.Context, prompt string, out any) error {
	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 2048,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		if err := json.Unmarshal([]byte(stripFences(block.Text)), out); err != nil {
			return fmt.Errorf("parsing generator JSON: %w", err)
		}
		return nil
	}
	return fmt.Errorf("no text content in Claude API response")
}

// stripFences removes a surrounding markdown code fence, which models emit
// despite instructions not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
