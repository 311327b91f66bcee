package patterns

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/nfse-extractor/internal/common"
)

//go:embed default.yaml
var defaultCatalog []byte

// Definition is the declarative form of a Rule, as found in catalog files.
type Definition struct {
	Name     string   `yaml:"name" json:"name"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

type catalogFile struct {
	Version int          `yaml:"version" json:"version"`
	Fields  []Definition `yaml:"fields" json:"fields"`
}

// Catalog maps field names to their fallback rules, in declaration order.
type Catalog struct {
	rules []Rule
	index map[string]int
}

// New compiles defs into a Catalog. Broken patterns are logged and kept; they never match.
func New(defs []Definition, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{index: make(map[string]int, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, common.NewAppError("CATALOG_ERROR", "field name is required", common.ErrCatalog)
		}
		if _, dup := c.index[d.Name]; dup {
			return nil, common.NewAppError("CATALOG_ERROR", fmt.Sprintf("duplicate field %q", d.Name), common.ErrCatalog)
		}
		rule := NewRule(d.Name, d.Patterns...)
		for i, p := range rule.Patterns {
			if p.Broken() {
				logger.Warn("catalog.pattern.invalid", "field", d.Name, "index", i, "error", p.Err())
			}
		}
		c.index[d.Name] = len(c.rules)
		c.rules = append(c.rules, rule)
	}
	return c, nil
}

// Default builds the embedded catalog.
func Default(logger *slog.Logger) (*Catalog, error) {
	return Parse(defaultCatalog, logger)
}

// Load reads a YAML catalog file. An empty path yields the default catalog.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	if path == "" {
		return Default(logger)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, logger)
}

// Parse validates and compiles a YAML catalog document.
func Parse(data []byte, logger *slog.Logger) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, common.NewAppError("CATALOG_ERROR", "decode yaml", fmt.Errorf("%w: %v", common.ErrCatalog, err))
	}
	if err := validateDocument(raw); err != nil {
		return nil, common.NewAppError("CATALOG_ERROR", "schema validation", fmt.Errorf("%w: %v", common.ErrCatalog, err))
	}
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, common.NewAppError("CATALOG_ERROR", "decode yaml", fmt.Errorf("%w: %v", common.ErrCatalog, err))
	}
	return New(doc.Fields, logger)
}

// Rules returns the rules in declaration order.
func (c *Catalog) Rules() []Rule { return c.rules }

// Rule returns the rule for field.
func (c *Catalog) Rule(field string) (Rule, bool) {
	i, ok := c.index[field]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

// Fields returns the field names in declaration order.
func (c *Catalog) Fields() []string {
	out := make([]string, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Field
	}
	return out
}

// Len is the number of fields.
func (c *Catalog) Len() int { return len(c.rules) }
