package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tailordocs/go-tailor/pkg/tailor"
)

const (
	keywordsSystemPrompt = "You are a helpful recruiter analyzing job descriptions."
	tailorSystemPrompt   = "You are a professional resume writer. Return only valid JSON."

	keywordsPromptTemplate = `You are an expert recruiter analyzing job descriptions.
Given this job description, identify the most important technical skills,
soft skills, tools, and qualifications that would be valuable to see in
an applicant's resume.

Job Description:
%s

Return ONLY a comma-separated list of the most relevant keywords and phrases.
Focus on specific, concrete terms rather than general concepts.
Limit your response to 20-25 of the most important terms.`

	tailorPromptTemplate = `You are an expert resume writer tailoring a resume to a specific job.

Job Description:
%s

Important Keywords to Include (where relevant):
%s

Current Resume Content (in JSON format):
%s

Task:
1. Rewrite each bullet point to naturally incorporate relevant keywords
2. Maintain the original meaning and achievements
3. Respect the min_chars and max_chars constraints for each bullet point
4. For each bullet point, add a "keywords" list showing which keywords were used from the important keywords list
5. Keep the tone professional and achievement-focused
6. Use strong action verbs
7. Quantify achievements where possible
8. Do not invent new achievements or skills

Return ONLY valid JSON with no additional text or formatting.
The JSON should contain the complete resume schema with updated bullet points and keyword tracking.`
)

// Generator turns a job description into tailored schema content through a
// chat model. Every call is retried with exponential backoff up to the
// configured attempt count.
type Generator struct {
	chat        model.BaseChatModel
	maxAttempts int
	logger      zerolog.Logger
}

// NewGenerator creates a Generator. maxAttempts below 1 is clamped to 1.
func NewGenerator(chat model.BaseChatModel, maxAttempts int) *Generator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Generator{
		chat:        chat,
		maxAttempts: maxAttempts,
		logger:      log.Logger,
	}
}

// Keywords extracts the most relevant keywords from a job description as a
// flat list.
func (g *Generator) Keywords(ctx context.Context, jobDescription string) ([]string, error) {
	prompt := fmt.Sprintf(keywordsPromptTemplate, jobDescription)
	messages := []*schema.Message{
		schema.SystemMessage(keywordsSystemPrompt),
		schema.UserMessage(prompt),
	}

	var keywords []string
	err := g.retry(ctx, "keyword extraction", func() error {
		reply, err := g.chat.Generate(ctx, messages, model.WithTemperature(0.3))
		if err != nil {
			return err
		}
		keywords = keywords[:0]
		for _, part := range strings.Split(reply.Content, ",") {
			if kw := strings.TrimSpace(part); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info().Int("count", len(keywords)).Msg("extracted keywords")
	return keywords, nil
}

// TailorSchema rewrites the schema's bullet points against the job
// description and keyword list. The reply must be a valid content schema;
// an invalid one counts as a failed attempt.
func (g *Generator) TailorSchema(ctx context.Context, src *tailor.ContentSchema, keywords []string, jobDescription string) (*tailor.ContentSchema, error) {
	srcJSON, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal source schema: %w", err)
	}

	prompt := fmt.Sprintf(tailorPromptTemplate, jobDescription, strings.Join(keywords, ", "), string(srcJSON))
	messages := []*schema.Message{
		schema.SystemMessage(tailorSystemPrompt),
		schema.UserMessage(prompt),
	}

	var tailored *tailor.ContentSchema
	err = g.retry(ctx, "schema tailoring", func() error {
		reply, err := g.chat.Generate(ctx, messages, model.WithTemperature(0.4))
		if err != nil {
			return err
		}
		parsed, err := tailor.ParseSchema([]byte(stripCodeFences(reply.Content)))
		if err != nil {
			return fmt.Errorf("model returned an invalid schema: %w", err)
		}
		tailored = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	tailored.Keywords = keywords
	return tailored, nil
}

// retry runs op with exponential backoff until it succeeds, the attempt
// budget is spent, or the context is done.
func (g *Generator) retry(ctx context.Context, op string, fn func() error) error {
	attempt := 0
	wrapped := func() error {
		attempt++
		if err := fn(); err != nil {
			g.logger.Warn().
				Str("operation", op).
				Int("attempt", attempt).
				Err(err).
				Msg("generation attempt failed")
			return err
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(g.maxAttempts-1)),
		ctx)
	if err := backoff.Retry(wrapped, policy); err != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", op, attempt, err)
	}
	return nil
}

// stripCodeFences removes markdown code fence markers a model may wrap its
// JSON reply in.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
