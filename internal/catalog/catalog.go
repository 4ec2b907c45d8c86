// Package catalog holds the checkpoint definitions for each supported framework.
// The definitions are embedded at build time and drive prompt construction,
// response decoding and report layout.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

//go:embed frameworks.yaml
var frameworksYAML []byte

// Checkpoint is a single assessable requirement within a framework.
type Checkpoint struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title"`
}

// Definition describes one framework's checklist.
type Definition struct {
	Code         models.Framework `yaml:"code"`
	Description  string           `yaml:"description"`
	ExcerptChars int              `yaml:"excerpt_chars"`
	Checkpoints  []Checkpoint     `yaml:"checkpoints"`
}

// Label returns the framework display name.
func (d Definition) Label() string {
	return d.Code.Label()
}

// Keys returns the checkpoint keys in catalog order.
func (d Definition) Keys() []string {
	keys := make([]string, len(d.Checkpoints))
	for i, c := range d.Checkpoints {
		keys[i] = c.Key
	}
	return keys
}

// Title returns the human-readable title of a checkpoint, or the key itself.
func (d Definition) Title(key string) string {
	for _, c := range d.Checkpoints {
		if c.Key == key {
			return c.Title
		}
	}
	return key
}

// Catalog indexes framework definitions by code.
type Catalog struct {
	defs map[models.Framework]Definition
}

type catalogFile struct {
	Frameworks []Definition `yaml:"frameworks"`
}

// Parse decodes a catalog document and checks that every supported framework is defined.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse framework catalog: %w", err)
	}
	c := &Catalog{defs: make(map[models.Framework]Definition, len(f.Frameworks))}
	for _, d := range f.Frameworks {
		if !d.Code.Valid() {
			return nil, fmt.Errorf("catalog: unknown framework code %q", d.Code)
		}
		if len(d.Checkpoints) == 0 {
			return nil, fmt.Errorf("catalog: framework %s has no checkpoints", d.Code)
		}
		if d.ExcerptChars <= 0 {
			return nil, fmt.Errorf("catalog: framework %s has no excerpt size", d.Code)
		}
		c.defs[d.Code] = d
	}
	for _, fw := range models.AllFrameworks {
		if _, ok := c.defs[fw]; !ok {
			return nil, fmt.Errorf("catalog: framework %s is not defined", fw)
		}
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. The embedded document is validated by tests,
// so a parse failure here is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(frameworksYAML)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Get returns the definition for a framework.
func (c *Catalog) Get(f models.Framework) (Definition, bool) {
	d, ok := c.defs[f]
	return d, ok
}

// MustGet returns the definition for a supported framework.
func (c *Catalog) MustGet(f models.Framework) Definition {
	d, ok := c.defs[f]
	if !ok {
		panic(fmt.Sprintf("catalog: framework %s is not defined", f))
	}
	return d
}

// Infos lists all frameworks in synthesis order for listing endpoints.
func (c *Catalog) Infos() []models.FrameworkInfo {
	out := make([]models.FrameworkInfo, 0, len(models.AllFrameworks))
	for _, f := range models.AllFrameworks {
		d := c.defs[f]
		titles := make([]string, len(d.Checkpoints))
		for i, cp := range d.Checkpoints {
			titles[i] = cp.Title
		}
		out = append(out, models.FrameworkInfo{
			Code:        f,
			Label:       f.Label(),
			Weight:      f.Weight(),
			Description: d.Description,
			Checkpoints: titles,
		})
	}
	return out
}
