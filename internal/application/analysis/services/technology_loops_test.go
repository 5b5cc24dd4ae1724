package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/test/helpers"
)

func TestTechnologyLoopFinder_NoLoops(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	lab := f.Machine("lab", 1)
	base := f.Technology("automation", 10, helpers.IDs(lab), nil)
	f.Technology("automation-2", 40, helpers.IDs(lab), nil, base)
	c := f.Build(t)

	// Act
	loops := services.NewTechnologyLoopFinder().FindLoops(context.Background(), c)

	// Assert
	assert.Empty(t, loops)
}

func TestTechnologyLoopFinder_ReportsPrerequisiteCycle(t *testing.T) {
	// Arrange: a -> b -> c -> a, plus an unrelated d after a
	f := helpers.NewCatalogFixture()
	lab := f.Machine("lab", 1)
	a := f.Technology("a", 1, helpers.IDs(lab), nil)
	b := f.Technology("b", 1, helpers.IDs(lab), nil, a)
	cc := f.Technology("c", 1, helpers.IDs(lab), nil, b)
	f.Technology("d", 1, helpers.IDs(lab), nil, a)
	f.Object(a).(*catalog.Technology).Prerequisites = []catalog.ID{cc}
	c := f.Build(t)

	// Act
	loops := services.NewTechnologyLoopFinder().FindLoops(context.Background(), c)

	// Assert
	require.Len(t, loops, 1)
	assert.ElementsMatch(t, []catalog.ID{a, b, cc}, loops[0].Technologies)
}

func TestTechnologyLoopFinder_SelfPrerequisiteIsLoop(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	lab := f.Machine("lab", 1)
	a := f.Technology("a", 1, helpers.IDs(lab), nil)
	f.Object(a).(*catalog.Technology).Prerequisites = []catalog.ID{a}
	c := f.Build(t)

	// Act
	loops := services.NewTechnologyLoopFinder().FindLoops(context.Background(), c)

	// Assert
	require.Len(t, loops, 1)
	assert.Equal(t, []catalog.ID{a}, loops[0].Technologies)
}
