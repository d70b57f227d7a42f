// Package catalog holds the candidate pool of recommendable articles.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"next_read/models"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog is an immutable, validated list of articles.
type Catalog struct {
	articles []models.Article
	byID     map[string]int
}

type catalogFile struct {
	Articles []models.Article `yaml:"articles"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// Load 从文件加载目录，路径为空时返回内置目录
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(f.Articles)
}

// New validates articles and builds a catalog.
// IDs must be unique and non-empty, titles non-empty, and every clue weight positive.
func New(articles []models.Article) (*Catalog, error) {
	if len(articles) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	c := &Catalog{
		articles: make([]models.Article, 0, len(articles)),
		byID:     make(map[string]int, len(articles)),
	}
	for i, a := range articles {
		a.ID = strings.TrimSpace(a.ID)
		a.Title = strings.TrimSpace(a.Title)
		if a.ID == "" {
			return nil, fmt.Errorf("article #%d has empty id", i)
		}
		if a.Title == "" {
			return nil, fmt.Errorf("article %q has empty title", a.ID)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate article id %q", a.ID)
		}
		if err := a.Clues.Validate(); err != nil {
			return nil, fmt.Errorf("article %q: %w", a.ID, err)
		}
		c.byID[a.ID] = len(c.articles)
		c.articles = append(c.articles, a)
	}
	return c, nil
}

// Articles returns a copy of all articles in catalog order.
func (c *Catalog) Articles() []models.Article {
	out := make([]models.Article, len(c.articles))
	copy(out, c.articles)
	return out
}

// Len 目录条目数
func (c *Catalog) Len() int {
	return len(c.articles)
}

// Find looks an article up by id.
func (c *Catalog) Find(id string) (models.Article, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Article{}, false
	}
	return c.articles[i], true
}

// Describe returns the topic sentence of article id, when it has one.
func (c *Catalog) Describe(id string) (string, bool) {
	a, ok := c.Find(id)
	if !ok || a.Context == "" {
		return "", false
	}
	return a.Context, true
}

// Eligible returns the articles whose id is not in history, in catalog order.
func (c *Catalog) Eligible(history []string) []models.Article {
	out := make([]models.Article, 0, len(c.articles))
	for _, a := range c.articles {
		if !slices.Contains(history, a.ID) {
			out = append(out, a)
		}
	}
	return out
}

// EligibleTitles is Eligible projected onto titles.
func (c *Catalog) EligibleTitles(history []string) []string {
	eligible := c.Eligible(history)
	titles := make([]string, 0, len(eligible))
	for _, a := range eligible {
		titles = append(titles, a.Title)
	}
	return titles
}
