package catalog

import (
	"testing"

	"medicine-locator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedCatalog() *Catalog {
	c := New()
	c.Load(
		[]models.Medicine{
			{ID: "med-1", Name: "Paracetamol"},
			{ID: "med-2", Name: "Ibuprofen"},
		},
		[]models.MedicineAlias{
			{Alias: "Acetaminophen", MedicineID: "med-1"},
			{Alias: "Tylenol", MedicineID: "med-1"},
			{Alias: "Orphan", MedicineID: "med-404"},
		},
	)
	return c
}

func TestResolveByID(t *testing.T) {
	c := loadedCatalog()
	id, err := c.Resolve("med-1")
	require.NoError(t, err)
	assert.Equal(t, "med-1", id)
}

func TestResolveByNameAndAlias(t *testing.T) {
	c := loadedCatalog()

	id, err := c.Resolve("paracetamol")
	require.NoError(t, err)
	assert.Equal(t, "med-1", id)

	id, err = c.Resolve("  Tylenol ")
	require.NoError(t, err)
	assert.Equal(t, "med-1", id)

	id, err = c.Resolve("IBUPROFEN")
	require.NoError(t, err)
	assert.Equal(t, "med-2", id)
}

func TestResolveUnknown(t *testing.T) {
	c := loadedCatalog()

	_, err := c.Resolve("aspirin")
	assert.ErrorIs(t, err, ErrInvalidMedicine)

	// Alias pointing at an unknown medicine was dropped at load time.
	_, err = c.Resolve("orphan")
	assert.ErrorIs(t, err, ErrInvalidMedicine)
}

func TestLoadReplacesContents(t *testing.T) {
	c := loadedCatalog()
	c.Load([]models.Medicine{{ID: "med-9", Name: "Amoxicillin"}}, nil)

	assert.Equal(t, 1, c.Len())
	_, err := c.Resolve("med-1")
	assert.ErrorIs(t, err, ErrInvalidMedicine)

	m, ok := c.Get("med-9")
	require.True(t, ok)
	assert.Equal(t, "Amoxicillin", m.Name)
}
