// Package gemini implements the answer judge and the narrative generator
// on top of the Google GenAI API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hirein/engine/internal/domain/judge"
	"github.com/hirein/engine/internal/domain/model"
	"github.com/hirein/engine/internal/domain/narrative"
	"github.com/hirein/engine/internal/domain/verdict"
)

const (
	defaultModel = "gemini-2.5-flash"
)

const judgePrompt = `You are grading one interview answer.

Question:
%s

Answer:
%s

Rate the answer on four axes: factual_accuracy, completeness, relevance,
coherence. For each axis give a label (low, medium or high) and a one
sentence explanation. Also give an overall score from 1 to 5 and a short
final remark.

Reply with JSON only, exactly this shape:
{
  "factual_accuracy": {"label": "...", "explanation": "..."},
  "completeness": {"label": "...", "explanation": "..."},
  "relevance": {"label": "...", "explanation": "..."},
  "coherence": {"label": "...", "explanation": "..."},
  "score": 3,
  "final_remark": "..."
}`

const narrativePrompt = `You are summarizing a completed technical interview
for a recruiter.

The candidate answered %d of %d questions. Average scores (0 to 1):
factual accuracy %.2f, completeness %.2f, relevance %.2f, coherence %.2f,
overall %.2f. Verdict: %s, knowledge level: %s.

Reply with JSON only, exactly this shape:
{
  "summary": "two or three sentences for the recruiter",
  "recommendations": "one or two sentences of next steps"
}`

// Client is a Gemini-backed Judge and Narrator.
type Client struct {
	client    *genai.Client
	modelName string
	labels    LabelMap
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithLabelMap overrides the categorical-to-numeric label conversion.
func WithLabelMap(m LabelMap) Option {
	return func(c *Client) {
		c.labels = m
	}
}

// NewClient creates a Gemini client for the API backend.
func NewClient(ctx context.Context, apiKey, modelName string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if modelName = strings.TrimSpace(modelName); modelName == "" {
		modelName = defaultModel
	}

	c := &Client{
		client:    client,
		modelName: modelName,
		labels:    DefaultLabelMap(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}

// Score implements judge.Judge: one API round trip, parsed into the four
// axis scores plus the quick score. Any failure means no evaluation.
func (c *Client) Score(ctx context.Context, in judge.Input) (judge.Result, error) {
	prompt := fmt.Sprintf(judgePrompt, in.Question, in.Answer)
	raw, tokens, err := c.generate(ctx, prompt)
	if err != nil {
		return judge.Result{}, fmt.Errorf("%w: %v", judge.ErrUnavailable, err)
	}

	res, err := parseJudgeResponse(raw, c.labels)
	if err != nil {
		return judge.Result{}, err
	}
	res.Tokens = tokens
	return res, nil
}

// Summarize implements narrative.Narrator.
func (c *Client) Summarize(ctx context.Context, s verdict.Summary) (narrative.Narrative, error) {
	prompt := fmt.Sprintf(narrativePrompt,
		s.EvaluatedCount, s.TotalQuestions,
		s.AverageFactualAccuracy, s.AverageCompleteness,
		s.AverageRelevance, s.AverageCoherence, s.AverageScore,
		s.PassStatus, s.KnowledgeLevel,
	)
	raw, _, err := c.generate(ctx, prompt)
	if err != nil {
		return narrative.Narrative{}, fmt.Errorf("%w: %v", narrative.ErrUnavailable, err)
	}
	return parseNarrativeResponse(raw)
}

// generate sends the prompt and returns the concatenated text plus token
// usage.
func (c *Client) generate(ctx context.Context, prompt string) (string, model.TokenCounts, error) {
	if c == nil || c.client == nil {
		return "", model.TokenCounts{}, errors.New("gemini client is not initialized")
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", model.TokenCounts{}, fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	out := strings.TrimSpace(builder.String())
	if out == "" {
		return "", model.TokenCounts{}, errors.New("gemini api returned empty response")
	}

	var tokens model.TokenCounts
	if resp.UsageMetadata != nil {
		tokens.Prompt = int(resp.UsageMetadata.PromptTokenCount)
		tokens.Completion = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, tokens, nil
}

// axisResponse is one axis of the judge's JSON reply.
type axisResponse struct {
	Label       string `json:"label"`
	Explanation string `json:"explanation"`
}

// judgeResponse mirrors the JSON shape requested by judgePrompt.
type judgeResponse struct {
	FactualAccuracy axisResponse `json:"factual_accuracy"`
	Completeness    axisResponse `json:"completeness"`
	Relevance       axisResponse `json:"relevance"`
	Coherence       axisResponse `json:"coherence"`
	Score           int          `json:"score"`
	FinalRemark     string       `json:"final_remark"`
}

// narrativeResponse mirrors the JSON shape requested by narrativePrompt.
type narrativeResponse struct {
	Summary         string `json:"summary"`
	Recommendations string `json:"recommendations"`
}

// parseJudgeResponse converts the model's reply into a judge.Result.
func parseJudgeResponse(raw string, labels LabelMap) (judge.Result, error) {
	var jr judgeResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &jr); err != nil {
		return judge.Result{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if jr.FactualAccuracy.Label == "" && jr.Completeness.Label == "" &&
		jr.Relevance.Label == "" && jr.Coherence.Label == "" {
		return judge.Result{}, fmt.Errorf("%w: no axis labels", ErrBadResponse)
	}

	res := judge.Result{
		Scores: model.DimensionScores{
			FactualAccuracy: labels.Score(jr.FactualAccuracy.Label),
			Completeness:    labels.Score(jr.Completeness.Label),
			Relevance:       labels.Score(jr.Relevance.Label),
			Coherence:       labels.Score(jr.Coherence.Label),
		},
		Explanations: model.DimensionExplanations{
			FactualAccuracy: jr.FactualAccuracy.Explanation,
			Completeness:    jr.Completeness.Explanation,
			Relevance:       jr.Relevance.Explanation,
			Coherence:       jr.Coherence.Explanation,
		},
		FinalRemark: jr.FinalRemark,
	}
	if jr.Score >= 1 && jr.Score <= 5 {
		res.QuickScore = jr.Score
	} else {
		res.QuickScore = judge.QuickScore(res.Overall())
	}
	return res, nil
}

// parseNarrativeResponse converts the model's reply into a Narrative.
func parseNarrativeResponse(raw string) (narrative.Narrative, error) {
	var nr narrativeResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &nr); err != nil {
		return narrative.Narrative{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if nr.Summary == "" {
		return narrative.Narrative{}, fmt.Errorf("%w: empty summary", ErrBadResponse)
	}
	return narrative.Narrative{
		Summary:         nr.Summary,
		Recommendations: nr.Recommendations,
	}, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON
// in one.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
