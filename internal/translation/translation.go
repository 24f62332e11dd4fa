// Package translation fills the Hindi side of bilingual labels from the
// English side. Failures never block a save: the field is left blank for
// manual entry.
package translation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	translate "google.golang.org/api/translate/v2"
	"google.golang.org/api/option"

	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

const SourceLanguage = "en"

type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Google calls the Cloud Translation v2 API directly.
type Google struct {
	svc *translate.Service
}

func NewGoogle(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Google, error) {
	if apiKey == "" {
		return nil, errors.New("translate api key is required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := translate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("translate service: %w", err)
	}
	return &Google{svc: svc}, nil
}

func (g *Google) Translate(ctx context.Context, text, target string) (string, error) {
	resp, err := g.svc.Translations.List([]string{text}, target).
		Source(SourceLanguage).
		Format("text").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(resp.Translations) == 0 {
		return "", errors.New("empty translation response")
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}

// ProxyClient is the slice of the marketplace client used by Proxy.
type ProxyClient interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Proxy routes translation through the marketplace's translation endpoint,
// for deployments without a Google key of their own.
type Proxy struct {
	Client ProxyClient
}

func (p Proxy) Translate(ctx context.Context, text, target string) (string, error) {
	return p.Client.Translate(ctx, text, SourceLanguage, target)
}

// AutoFill translates every pair whose English side is set and whose Hindi
// side is empty. It returns how many fields were filled.
func AutoFill(ctx context.Context, t Translator, target string, pairs []models.LabelPair, log *logger.Logger) int {
	if t == nil {
		return 0
	}
	if log == nil {
		log = logger.Nop()
	}
	filled := 0
	for _, p := range pairs {
		if p.Hindi == nil || strings.TrimSpace(*p.Hindi) != "" {
			continue
		}
		src := strings.TrimSpace(p.English)
		if src == "" {
			continue
		}
		out, err := t.Translate(ctx, src, target)
		if err != nil {
			log.Debugf("translate %s left for manual entry: %v", p.Field, err)
			continue
		}
		*p.Hindi = strings.TrimSpace(out)
		filled++
	}
	return filled
}

// Fill runs AutoFill on any record that exposes label pairs.
func Fill(ctx context.Context, t Translator, target string, rec interface{}, log *logger.Logger) int {
	b, ok := rec.(models.Bilingual)
	if !ok {
		return 0
	}
	return AutoFill(ctx, t, target, b.LabelPairs(), log)
}
