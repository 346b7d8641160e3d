package prompts

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Site setting keys read by the generation pipeline
const (
	SettingResearch       = "prompt_research"
	SettingWrite          = "prompt_write"
	SettingSEO            = "prompt_seo"
	SettingDefaultConcept = "default_concept"
	SettingAPIKey         = "ai_api_key"
	SettingModel          = "ai_model"
)

// FallbackConcept is used when neither the request nor settings carry a concept
const FallbackConcept = "A thoughtful music review for a general audience."

//go:embed defaults.yaml
var defaultsYAML []byte

// Templates holds the prompt templates and default concept
type Templates struct {
	Research       string `yaml:"research"`
	Write          string `yaml:"write"`
	SEO            string `yaml:"seo"`
	DefaultConcept string `yaml:"default_concept"`
}

// Defaults parses the embedded templates
func Defaults() (Templates, error) {
	var t Templates
	if err := yaml.Unmarshal(defaultsYAML, &t); err != nil {
		return Templates{}, fmt.Errorf("failed to parse default prompts: %w", err)
	}
	if t.DefaultConcept == "" {
		t.DefaultConcept = FallbackConcept
	}
	return t, nil
}

// MustDefaults is Defaults for package initialisation
func MustDefaults() Templates {
	t, err := Defaults()
	if err != nil {
		panic(err)
	}
	return t
}
