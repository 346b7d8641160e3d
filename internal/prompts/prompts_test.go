package prompts

import (
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	tpl, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}

	checks := map[string][]string{
		"research": {"{songTitle}", "{artistName}"},
		"write":    {"{songTitle}", "{artistName}", "{concept}", "{categoryName}", "{language}", "{facts}", "제목:", "서두:"},
		"seo":      {"{existingTags}", "{article}"},
	}
	bodies := map[string]string{"research": tpl.Research, "write": tpl.Write, "seo": tpl.SEO}

	for name, placeholders := range checks {
		for _, p := range placeholders {
			if !strings.Contains(bodies[name], p) {
				t.Errorf("%s template missing %s", name, p)
			}
		}
	}

	if tpl.DefaultConcept == "" {
		t.Error("default concept should not be empty")
	}
}
