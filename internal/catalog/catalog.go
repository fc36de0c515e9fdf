// Package catalog provides the immutable, build-time embedded achievement catalog.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/badgedex/internal/model"
)

//go:embed catalog.yaml
var embedded []byte

var (
	// ErrInvalidCatalog is returned when catalog data fails validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrUnknownAchievement is returned when an id is not in the catalog.
	ErrUnknownAchievement = errors.New("unknown achievement")
)

// Catalog is an ordered, read-only sequence of achievements. Accessors return
// copies so callers cannot mutate catalog entries.
type Catalog struct {
	achievements []model.Achievement
	index        map[string]int
	trackers     []model.Tracker
	warnings     []string
}

type fileData struct {
	Achievements []achievementData `yaml:"achievements"`
	Tracking     []trackingData    `yaml:"tracking"`
}

type achievementData struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Emoji       string     `yaml:"emoji"`
	Description string     `yaml:"description"`
	HowToEarn   string     `yaml:"how_to_earn"`
	Status      string     `yaml:"status"`
	Tiers       []tierData `yaml:"tiers"`
	GuideSteps  []string   `yaml:"guide_steps"`
	ImageURL    string     `yaml:"image_url"`
}

type tierData struct {
	Name      string `yaml:"name"`
	Color     string `yaml:"color"`
	Criteria  string `yaml:"criteria"`
	Threshold *int   `yaml:"threshold"`
}

type trackingData struct {
	ID        string `yaml:"id"`
	Statistic string `yaml:"statistic"`
	OwnedAt   int    `yaml:"owned_at"`
}

// Default loads the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var raw fileData
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode: %v", ErrInvalidCatalog, err)
	}

	achievements := make([]model.Achievement, 0, len(raw.Achievements))
	for i, a := range raw.Achievements {
		status, err := model.ParseStatus(a.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: achievement %d (%s): %v", ErrInvalidCatalog, i, a.ID, err)
		}
		tiers := make([]model.Tier, 0, len(a.Tiers))
		for _, t := range a.Tiers {
			tiers = append(tiers, model.Tier{
				Name:      t.Name,
				Color:     t.Color,
				Criteria:  t.Criteria,
				Threshold: t.Threshold,
			})
		}
		achievements = append(achievements, model.Achievement{
			ID:          strings.TrimSpace(a.ID),
			Name:        a.Name,
			Emoji:       a.Emoji,
			Description: a.Description,
			HowToEarn:   a.HowToEarn,
			Status:      status,
			Tiers:       tiers,
			GuideSteps:  a.GuideSteps,
			ImageURL:    a.ImageURL,
		})
	}

	trackers := make([]model.Tracker, 0, len(raw.Tracking))
	for _, t := range raw.Tracking {
		stat, err := model.ParseStatistic(t.Statistic)
		if err != nil {
			return nil, fmt.Errorf("%w: tracking %s: %v", ErrInvalidCatalog, t.ID, err)
		}
		trackers = append(trackers, model.Tracker{
			AchievementID: strings.TrimSpace(t.ID),
			Statistic:     stat,
			OwnedAt:       t.OwnedAt,
		})
	}
	return New(achievements, trackers)
}

// New validates the given entries and builds a catalog from copies of them.
func New(achievements []model.Achievement, trackers []model.Tracker) (*Catalog, error) {
	warnings, err := validate(achievements, trackers)
	if err != nil {
		return nil, err
	}
	c := &Catalog{
		achievements: make([]model.Achievement, len(achievements)),
		index:        make(map[string]int, len(achievements)),
		trackers:     append([]model.Tracker(nil), trackers...),
		warnings:     warnings,
	}
	for i, a := range achievements {
		c.achievements[i] = cloneAchievement(a)
		c.index[a.ID] = i
	}
	return c, nil
}

// All returns every achievement in catalog order.
func (c *Catalog) All() []model.Achievement {
	out := make([]model.Achievement, len(c.achievements))
	for i, a := range c.achievements {
		out[i] = cloneAchievement(a)
	}
	return out
}

// Len returns the number of achievements.
func (c *Catalog) Len() int {
	return len(c.achievements)
}

// Get returns the achievement with the given id.
func (c *Catalog) Get(id string) (model.Achievement, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.Achievement{}, false
	}
	return cloneAchievement(c.achievements[i]), true
}

// Lookup is Get with a descriptive error that carries close matches.
func (c *Catalog) Lookup(id string) (model.Achievement, error) {
	id = strings.TrimSpace(strings.ToLower(id))
	if a, ok := c.Get(id); ok {
		return a, nil
	}
	suggestions := c.Suggest(id, 3)
	if len(suggestions) == 0 {
		return model.Achievement{}, fmt.Errorf("%w %q", ErrUnknownAchievement, id)
	}
	return model.Achievement{}, fmt.Errorf("%w %q (did you mean: %s?)", ErrUnknownAchievement, id, strings.Join(suggestions, ", "))
}

// Suggest returns up to limit achievement ids that fuzzily match input.
func (c *Catalog) Suggest(input string, limit int) []string {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" || limit <= 0 {
		return nil
	}
	targets := make([]string, len(c.achievements))
	for i, a := range c.achievements {
		targets[i] = a.ID + " " + strings.ToLower(a.Name)
	}
	matches := fuzzy.Find(input, targets)
	out := make([]string, 0, limit)
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, c.achievements[m.Index].ID)
	}
	return out
}

// Related returns up to limit other achievements sharing the status of id,
// in catalog order.
func (c *Catalog) Related(id string, limit int) []model.Achievement {
	i, ok := c.index[id]
	if !ok || limit <= 0 {
		return nil
	}
	status := c.achievements[i].Status
	var out []model.Achievement
	for _, a := range c.achievements {
		if len(out) == limit {
			break
		}
		if a.ID == id || a.Status != status {
			continue
		}
		out = append(out, cloneAchievement(a))
	}
	return out
}

// Trackers returns the statistic mappings for trackable achievements.
func (c *Catalog) Trackers() []model.Tracker {
	return append([]model.Tracker(nil), c.trackers...)
}

// Warnings returns data-quality notes found while loading. They never block loading.
func (c *Catalog) Warnings() []string {
	return append([]string(nil), c.warnings...)
}

func cloneAchievement(a model.Achievement) model.Achievement {
	out := a
	if a.Tiers != nil {
		out.Tiers = make([]model.Tier, len(a.Tiers))
		for i, t := range a.Tiers {
			out.Tiers[i] = t
			if t.Threshold != nil {
				v := *t.Threshold
				out.Tiers[i].Threshold = &v
			}
		}
	}
	if a.GuideSteps != nil {
		out.GuideSteps = append([]string(nil), a.GuideSteps...)
	}
	return out
}
