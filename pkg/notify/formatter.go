package notify

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

const (
	defaultSuccessTemplate = "{{ name }} has been added."
	defaultFailureTemplate = "Could not add machine: {{ reason }}"

	// defaultFallbackLabel substitutes for an empty hostname in the success
	// notification only. The creation command still omits the hostname so the
	// backend generates one; the two fallbacks are independent.
	defaultFallbackLabel = "Machine"
)

// FormatterOption customises formatter construction.
type FormatterOption func(*formatterConfig)

type formatterConfig struct {
	successTemplate string
	failureTemplate string
	fallbackLabel   string
}

// WithSuccessTemplate overrides the success message template. The template
// receives the sanitized entity name as "name".
func WithSuccessTemplate(tpl string) FormatterOption {
	return func(cfg *formatterConfig) {
		if strings.TrimSpace(tpl) != "" {
			cfg.successTemplate = tpl
		}
	}
}

// WithFailureTemplate overrides the failure message template. The template
// receives the normalized error string as "reason".
func WithFailureTemplate(tpl string) FormatterOption {
	return func(cfg *formatterConfig) {
		if strings.TrimSpace(tpl) != "" {
			cfg.failureTemplate = tpl
		}
	}
}

// WithFallbackLabel overrides the generic label used when the entity name is
// empty.
func WithFallbackLabel(label string) FormatterOption {
	return func(cfg *formatterConfig) {
		if strings.TrimSpace(label) != "" {
			cfg.fallbackLabel = label
		}
	}
}

// Formatter renders notification messages from templates. User-supplied
// names pass through a strict sanitizer before templating, since consoles
// commonly interpolate notifications into markup.
type Formatter struct {
	policy   *bluemonday.Policy
	success  *pongo2.Template
	failure  *pongo2.Template
	fallback string
}

// NewFormatter constructs a Formatter, parsing the configured templates.
func NewFormatter(options ...FormatterOption) (*Formatter, error) {
	cfg := formatterConfig{
		successTemplate: defaultSuccessTemplate,
		failureTemplate: defaultFailureTemplate,
		fallbackLabel:   defaultFallbackLabel,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	success, err := pongo2.FromString(cfg.successTemplate)
	if err != nil {
		return nil, fmt.Errorf("notify: parse success template: %w", err)
	}
	failure, err := pongo2.FromString(cfg.failureTemplate)
	if err != nil {
		return nil, fmt.Errorf("notify: parse failure template: %w", err)
	}

	return &Formatter{
		policy:   bluemonday.StrictPolicy(),
		success:  success,
		failure:  failure,
		fallback: cfg.fallbackLabel,
	}, nil
}

// Saved renders the success notification for the given entity display name,
// substituting the generic label when the name is empty.
func (f *Formatter) Saved(name string) (string, error) {
	clean := strings.TrimSpace(f.policy.Sanitize(name))
	if clean == "" {
		clean = f.fallback
	}
	out, err := f.success.Execute(pongo2.Context{"name": clean})
	if err != nil {
		return "", fmt.Errorf("notify: render success message: %w", err)
	}
	return out, nil
}

// Failed renders the failure notification for the given normalized reason.
func (f *Formatter) Failed(reason string) (string, error) {
	out, err := f.failure.Execute(pongo2.Context{"reason": strings.TrimSpace(reason)})
	if err != nil {
		return "", fmt.Errorf("notify: render failure message: %w", err)
	}
	return out, nil
}
