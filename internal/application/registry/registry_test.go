package registry_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/application/registry"
)

type widget struct {
	serial int
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	// Arrange
	reg := registry.New[*widget]("adapter")
	serial := 0
	err := reg.Register("euclidean", func() (*widget, error) {
		serial++
		return &widget{serial: serial}, nil
	})
	require.NoError(t, err)

	// Act
	first, err1 := reg.Get("euclidean")
	second, err2 := reg.Get("euclidean")

	// Assert - each Get builds a fresh instance
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, 1, first.serial)
	assert.Equal(t, 2, second.serial)
}

func TestRegistry_NamesAreCaseInsensitive(t *testing.T) {
	// Arrange
	reg := registry.New[*widget]("adapter")
	err := reg.Register("  Haversine ", func() (*widget, error) { return &widget{}, nil })
	require.NoError(t, err)

	// Act
	_, err = reg.Get("HAVERSINE")

	// Assert
	require.NoError(t, err)
	assert.True(t, reg.Has("haversine"))
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	// Arrange
	reg := registry.New[*widget]("solver")
	err := reg.Register("mip", func() (*widget, error) { return &widget{}, nil })
	require.NoError(t, err)

	// Act
	err = reg.Register("MIP", func() (*widget, error) { return &widget{}, nil })

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), `solver "mip" is already registered`)
}

func TestRegistry_GetUnknownName(t *testing.T) {
	// Arrange
	reg := registry.New[*widget]("solver")

	// Act
	_, err := reg.Get("quantum")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), `solver "quantum" is not registered`)
}

func TestRegistry_FactoryErrorIsWrapped(t *testing.T) {
	// Arrange
	reg := registry.New[*widget]("adapter")
	boom := errors.New("no api key")
	err := reg.Register("mapbox", func() (*widget, error) { return nil, boom })
	require.NoError(t, err)

	// Act
	_, err = reg.Get("mapbox")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_NamesSorted(t *testing.T) {
	// Arrange
	reg := registry.New[*widget]("adapter")
	for _, name := range []string{"ors", "euclidean", "mapbox", "haversine"} {
		require.NoError(t, reg.Register(name, func() (*widget, error) { return &widget{}, nil }))
	}

	// Act
	names := reg.Names()

	// Assert
	assert.Equal(t, []string{"euclidean", "haversine", "mapbox", "ors"}, names)
	assert.Equal(t, 4, reg.Len())
}
