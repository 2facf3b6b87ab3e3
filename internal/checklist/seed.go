package checklist

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"contentflow/internal/action"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Phases []seedPhase `yaml:"phases"`
}

type seedPhase struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title"`
	Effort int        `yaml:"effort"`
	Items  []seedItem `yaml:"items"`
}

type seedItem struct {
	ID          string `yaml:"id"`
	Text        string `yaml:"text"`
	Description string `yaml:"description"`
	ExpertTip   string `yaml:"expert_tip"`
	Action      string `yaml:"action"`
}

// LoadSeed decodes a YAML workflow definition into phases. Unknown fields are
// rejected so typos in a custom seed surface at startup.
func LoadSeed(r io.Reader) ([]Phase, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f seedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(f.Phases) == 0 {
		return nil, fmt.Errorf("seed has no phases")
	}
	phases := make([]Phase, 0, len(f.Phases))
	for _, sp := range f.Phases {
		if strings.TrimSpace(sp.Title) == "" {
			return nil, fmt.Errorf("phase %q: title is required", sp.ID)
		}
		p := Phase{ID: sp.ID, Title: sp.Title, Effort: sp.Effort, Items: make([]Item, 0, len(sp.Items))}
		for _, si := range sp.Items {
			if strings.TrimSpace(si.Text) == "" {
				return nil, fmt.Errorf("item %q: text is required", si.ID)
			}
			it := Item{
				ID:          si.ID,
				Text:        si.Text,
				Description: si.Description,
				ExpertTip:   si.ExpertTip,
			}
			if raw := strings.TrimSpace(si.Action); raw != "" {
				k, err := action.ParseKind(raw)
				if err != nil {
					return nil, fmt.Errorf("item %q: %w", si.ID, err)
				}
				it.Action = &k
			}
			p.Items = append(p.Items, it)
		}
		phases = append(phases, p)
	}
	return phases, nil
}

// DefaultSeed returns the built-in five phase workflow.
func DefaultSeed() []Phase {
	phases, err := LoadSeed(bytes.NewReader(defaultSeed))
	if err != nil {
		panic(fmt.Sprintf("embedded seed is invalid: %v", err))
	}
	return phases
}

// LoadSeedFile reads a seed from path, or returns the default seed when path
// is empty.
func LoadSeedFile(path string) ([]Phase, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultSeed(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}
