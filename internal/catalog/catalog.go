// Package catalog resolves query medicine identifiers against the
// reference catalog, including alias normalization.
package catalog

import (
	"errors"
	"strings"
	"sync"

	"medicine-locator/internal/models"
)

// ErrInvalidMedicine is returned for identifiers unknown to the catalog.
// It is the only error that aborts a search outright.
var ErrInvalidMedicine = errors.New("unknown medicine identifier")

// Catalog is a read-mostly view of the medicine reference data.
type Catalog struct {
	mu      sync.RWMutex
	byID    map[string]models.Medicine
	byAlias map[string]string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		byID:    make(map[string]models.Medicine),
		byAlias: make(map[string]string),
	}
}

// Load replaces the catalog contents. Called at boot and on reloads from
// the external catalog collaborator.
func (c *Catalog) Load(medicines []models.Medicine, aliases []models.MedicineAlias) {
	byID := make(map[string]models.Medicine, len(medicines))
	byAlias := make(map[string]string, len(aliases)+len(medicines))

	for _, m := range medicines {
		byID[m.ID] = m
		byAlias[normalize(m.Name)] = m.ID
	}
	for _, a := range aliases {
		if _, ok := byID[a.MedicineID]; !ok {
			continue
		}
		byAlias[normalize(a.Alias)] = a.MedicineID
	}

	c.mu.Lock()
	c.byID = byID
	c.byAlias = byAlias
	c.mu.Unlock()
}

// Resolve normalizes an identifier, canonical name, or alias to the
// canonical medicine ID.
func (c *Catalog) Resolve(idOrAlias string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.byID[idOrAlias]; ok {
		return idOrAlias, nil
	}
	if id, ok := c.byAlias[normalize(idOrAlias)]; ok {
		return id, nil
	}
	return "", ErrInvalidMedicine
}

// Get returns the medicine record for a canonical ID.
func (c *Catalog) Get(id string) (models.Medicine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byID[id]
	return m, ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
