package model

import (
	"fmt"
	"net/url"
	"strings"
)

type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodPatch  HTTPMethod = "PATCH"
	MethodDelete HTTPMethod = "DELETE"
)

const DefaultMethod = MethodPost

var methods = []HTTPMethod{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

// ParseMethod accepts any casing; an empty string yields DefaultMethod.
func ParseMethod(raw string) (HTTPMethod, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultMethod, nil
	}
	for _, m := range methods {
		if string(m) == raw {
			return m, nil
		}
	}
	return "", &ValidationError{Field: "httpMethod", Reason: fmt.Sprintf("unsupported method %q", raw)}
}

// HasBody reports whether requests with this method carry the payload as JSON.
func (m HTTPMethod) HasBody() bool {
	return m != MethodGet
}

type WebhookConfig struct {
	WebhookURL  string     `json:"webhookUrl" yaml:"webhookUrl"`
	HTTPMethod  HTTPMethod `json:"httpMethod,omitempty" yaml:"httpMethod,omitempty"`
	ResponseURL string     `json:"responseUrl,omitempty" yaml:"responseUrl,omitempty"`
}

func (c WebhookConfig) Configured() bool {
	return c.WebhookURL != ""
}

// Method returns the configured method, falling back to DefaultMethod.
func (c WebhookConfig) Method() HTTPMethod {
	if c.HTTPMethod == "" {
		return DefaultMethod
	}
	return c.HTTPMethod
}

// Normalize trims and validates every field and returns the value to persist.
// Nothing about c is persisted when an error is returned.
func (c WebhookConfig) Normalize() (WebhookConfig, error) {
	out := WebhookConfig{
		WebhookURL:  strings.TrimSpace(c.WebhookURL),
		ResponseURL: strings.TrimSpace(c.ResponseURL),
	}

	if out.WebhookURL == "" {
		return WebhookConfig{}, &ValidationError{Field: "webhookUrl", Reason: "must not be empty"}
	}
	if err := ValidateURL("webhookUrl", out.WebhookURL); err != nil {
		return WebhookConfig{}, err
	}
	if out.ResponseURL != "" {
		if err := ValidateURL("responseUrl", out.ResponseURL); err != nil {
			return WebhookConfig{}, err
		}
	}

	m, err := ParseMethod(string(c.HTTPMethod))
	if err != nil {
		return WebhookConfig{}, err
	}
	out.HTTPMethod = m
	return out, nil
}

// ValidateURL requires an absolute URL with scheme and host.
func ValidateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: field, Reason: "invalid url", Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not an absolute url", raw)}
	}
	return nil
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(raw string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", &ValidationError{Field: "theme", Reason: fmt.Sprintf("unknown theme %q", raw)}
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
