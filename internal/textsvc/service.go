package textsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gravitrone/nebula-notes/internal/api"
	"github.com/gravitrone/nebula-notes/internal/note"
)

// MaxTags caps generated tag lists.
const MaxTags = 5

// maxTitleLength bounds generated titles.
const maxTitleLength = 80

// ErrEmptyInput is returned by Transform when there is no text to work on.
var ErrEmptyInput = errors.New("nothing to transform: text is empty")

// Service runs note actions against a generator.
type Service struct {
	gen     api.Generator
	log     *zap.Logger
	timeout time.Duration
}

// New wraps gen. timeout bounds each request; zero means no extra bound.
func New(gen api.Generator, log *zap.Logger, timeout time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gen: gen, log: log, timeout: timeout}
}

// TitleFrom generates a title for content. Empty content, an unusable
// response or any generator failure other than a bad credential yields
// note.DefaultTitle. A missing or rejected key is returned as an error.
func (s *Service) TitleFrom(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return note.DefaultTitle, nil
	}
	temp := float32(0.4)
	out, err := s.generate(ctx, api.GenerateRequest{
		Prompt:      titlePrompt(content),
		System:      systemPrompt,
		Temperature: &temp,
	})
	if err != nil {
		if api.IsAuthError(err) {
			return "", fmt.Errorf("%s: %w", ActionGenerateTitle.Label(), err)
		}
		s.log.Warn("title generation failed, using default", zap.Error(err))
		return note.DefaultTitle, nil
	}
	title := cleanTitle(out)
	if title == "" {
		return note.DefaultTitle, nil
	}
	return title, nil
}

// TagsFrom generates up to MaxTags tags. Generator and parse failures yield
// an empty list, except a missing or rejected key, which is returned.
func (s *Service) TagsFrom(ctx context.Context, content string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return []string{}, nil
	}
	temp := float32(0.2)
	out, err := s.generate(ctx, api.GenerateRequest{
		Prompt:      tagsPrompt(content),
		System:      systemPrompt,
		JSON:        true,
		Temperature: &temp,
	})
	if err != nil {
		if api.IsAuthError(err) {
			return nil, fmt.Errorf("%s: %w", ActionGenerateTags.Label(), err)
		}
		s.log.Warn("tag generation failed, using none", zap.Error(err))
		return []string{}, nil
	}
	tags, err := parseTags(out)
	if err != nil {
		s.log.Warn("tag response unparseable, using none", zap.Error(err), zap.String("response", truncate(out, 120)))
		return []string{}, nil
	}
	return tags, nil
}

// Transform runs summarize, fix_grammar or elaborate on text. Errors are
// returned to the caller.
func (s *Service) Transform(ctx context.Context, action Action, text string) (string, error) {
	if !action.IsTransform() {
		return "", fmt.Errorf("%s is not a text transform", action)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	out, err := s.generate(ctx, api.GenerateRequest{
		Prompt: transformPrompt(action, text),
		System: systemPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", action.Label(), err)
	}
	return strings.TrimSpace(out), nil
}

func (s *Service) generate(ctx context.Context, req api.GenerateRequest) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	out, err := s.gen.Generate(ctx, req)
	s.log.Debug("generate", zap.Duration("took", time.Since(start)), zap.Bool("ok", err == nil))
	return out, err
}

func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	title = strings.TrimLeft(title, "# ")
	title = strings.Trim(title, "\"'`*")
	title = strings.TrimPrefix(title, "Title:")
	title = strings.TrimSpace(title)
	return truncate(title, maxTitleLength)
}

func parseTags(raw string) ([]string, error) {
	body := stripFences(raw)
	var items []string
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		var wrapped struct {
			Tags []string `json:"tags"`
		}
		if err2 := json.Unmarshal([]byte(body), &wrapped); err2 != nil || wrapped.Tags == nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		items = wrapped.Tags
	}
	tags := []string{}
	for _, t := range items {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		var ok bool
		tags, ok = note.AddTag(tags, t)
		if ok && len(tags) == MaxTags {
			break
		}
	}
	return tags, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
