// Package packages describes the subscription tiers an admin can assign on
// approval and the time arithmetic around their windows.
package packages

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"stockx-backend-go/configs"
)

// ErrUnknownPackage is returned for ids missing from the catalog.
var ErrUnknownPackage = errors.New("unknown package")

// UnknownLabel is shown for package ids missing from the catalog.
const UnknownLabel = "Unknown"

// Package is one subscription tier.
type Package struct {
	ID      string `yaml:"id" json:"id"`
	Label   string `yaml:"label" json:"label"`
	Days    int    `yaml:"days,omitempty" json:"days,omitempty"`
	Minutes int    `yaml:"minutes,omitempty" json:"minutes,omitempty"`
}

// Duration is the length of the package window.
func (p Package) Duration() time.Duration {
	if p.Minutes > 0 {
		return time.Duration(p.Minutes) * time.Minute
	}
	return time.Duration(p.Days) * 24 * time.Hour
}

// Catalog is an ordered, read-only set of packages.
type Catalog struct {
	ordered []Package
	byID    map[string]Package
}

type catalogFile struct {
	Packages []Package `yaml:"packages"`
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data, err := configs.PackagesYAML(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding package catalog: %w", err)
	}
	if len(file.Packages) == 0 {
		return nil, errors.New("package catalog is empty")
	}

	c := &Catalog{byID: make(map[string]Package, len(file.Packages))}
	for _, p := range file.Packages {
		if p.ID == "" {
			return nil, errors.New("package catalog entry without id")
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate package id %q", p.ID)
		}
		if (p.Days > 0) == (p.Minutes > 0) {
			return nil, fmt.Errorf("package %q must set exactly one of days or minutes", p.ID)
		}
		c.ordered = append(c.ordered, p)
		c.byID[p.ID] = p
	}
	return c, nil
}

// MustDefault returns the embedded catalog and panics if it is malformed.
func MustDefault() *Catalog {
	c, err := Load("")
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the packages in catalog order.
func (c *Catalog) All() []Package {
	out := make([]Package, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Get looks up a package by id.
func (c *Catalog) Get(id string) (Package, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Label returns the display label for id.
func (c *Catalog) Label(id string) string {
	if p, ok := c.byID[id]; ok {
		return p.Label
	}
	return UnknownLabel
}

// EndDate is start plus the package duration.
func (c *Catalog) EndDate(start time.Time, id string) (time.Time, error) {
	p, ok := c.byID[id]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPackage, id)
	}
	return start.Add(p.Duration()), nil
}
