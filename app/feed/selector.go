package feed

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Selector is a compiled XPath expression evaluated against an HTML tree.
type Selector struct {
	raw  string
	expr *xpath.Expr
}

func ParseSelector(raw string) (*Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("selector is empty")
	}

	expr, err := xpath.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", raw, err)
	}

	return &Selector{raw: raw, expr: expr}, nil
}

func MustParseSelector(raw string) *Selector {
	s, err := ParseSelector(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Selector) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := ParseSelector(raw)
	if err != nil {
		return err
	}

	*s = *parsed
	return nil
}

func (s *Selector) String() string {
	if s == nil {
		return ""
	}
	return s.raw
}

// First returns the trimmed text value of the first non-empty match.
// Attribute selections (//a/@href) yield the attribute value.
func (s *Selector) First(doc *html.Node) (string, bool) {
	for _, node := range htmlquery.QuerySelectorAll(doc, s.expr) {
		if value := strings.TrimSpace(htmlquery.InnerText(node)); value != "" {
			return value, true
		}
	}
	return "", false
}
