package production_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/production"
)

const (
	ore   catalog.ID = 1
	plate catalog.ID = 2
	gear  catalog.ID = 3
)

func TestFlowNetwork_AddLinkRejectsDuplicates(t *testing.T) {
	// Arrange
	network := production.NewFlowNetwork()
	_, err := network.AddLink(ore, 1, production.LinkMatch)
	require.NoError(t, err)

	// Act
	_, err = network.AddLink(ore, 2, production.LinkAllowOverProduction)

	// Assert
	var duplicate *production.ErrDuplicateLink
	require.True(t, errors.As(err, &duplicate))
	assert.Equal(t, ore, duplicate.Resource)
	assert.Len(t, network.Links(), 1)
}

func TestFlowNetwork_RemoveLink(t *testing.T) {
	// Arrange
	network := production.NewFlowNetwork()
	_, err := network.AddLink(ore, 1, production.LinkMatch)
	require.NoError(t, err)

	// Act
	removed := network.RemoveLink(ore)

	// Assert
	assert.True(t, removed)
	assert.False(t, network.RemoveLink(ore))
	_, ok := network.Link(ore)
	assert.False(t, ok)
	_, err = network.AddLink(ore, 1, production.LinkMatch)
	assert.NoError(t, err)
}

func TestFlowNetwork_FindLinkWalksOutward(t *testing.T) {
	// Arrange
	root := production.NewFlowNetwork()
	rootOre, err := root.AddLink(ore, 0, production.LinkMatch)
	require.NoError(t, err)
	rootPlate, err := root.AddLink(plate, 0, production.LinkMatch)
	require.NoError(t, err)

	owner := root.AddProcess(10)
	nested := owner.CreateSubgroup()
	nestedPlate, err := nested.AddLink(plate, 0, production.LinkMatch)
	require.NoError(t, err)
	inner := nested.AddProcess(11)

	// Act
	foundOre, oreOK := inner.FindLink(ore)
	foundPlate, plateOK := inner.FindLink(plate)
	ownerPlate, _ := owner.FindLink(plate)
	_, gearOK := inner.FindLink(gear)

	// Assert
	require.True(t, oreOK)
	require.True(t, plateOK)
	assert.Same(t, rootOre, foundOre)
	assert.Same(t, nestedPlate, foundPlate, "the innermost link shadows the outer one")
	assert.Same(t, nestedPlate, ownerPlate, "an instance links through its own subgroup first")
	assert.False(t, gearOK)
	assert.NotSame(t, rootPlate, foundPlate)
}

func TestFlowNetwork_FindLinkIgnoresNoID(t *testing.T) {
	network := production.NewFlowNetwork()
	_, ok := network.FindLink(catalog.NoID)
	assert.False(t, ok)
}

func TestFlowNetwork_FlattenSkipsDisabledSubtrees(t *testing.T) {
	// Arrange
	root := production.NewFlowNetwork()
	_, err := root.AddLink(ore, 0, production.LinkMatch)
	require.NoError(t, err)
	first := root.AddProcess(10)
	disabled := root.AddProcess(11)
	disabled.Enabled = false
	hidden, err := disabled.CreateSubgroup().AddLink(plate, 0, production.LinkMatch)
	require.NoError(t, err)
	disabled.Subgroup().AddProcess(12)
	enabled := root.AddProcess(13)
	visible := enabled.CreateSubgroup().AddProcess(14)

	// Act
	instances, links := root.Flatten()

	// Assert
	assert.Equal(t, []*production.ProcessInstance{first, enabled, visible}, instances)
	assert.Len(t, links, 1)
	assert.NotContains(t, links, hidden)
}

func TestPage_Stats(t *testing.T) {
	// Arrange
	page, err := production.NewPage("  smelting  ")
	require.NoError(t, err)
	page.Root.AddProcess(10)
	_, err = page.Root.AddLink(ore, 0, production.LinkMatch)
	require.NoError(t, err)

	// Act
	instances, links := page.Stats()

	// Assert
	assert.Equal(t, "smelting", page.Name)
	assert.False(t, page.ID.IsZero())
	assert.Equal(t, 1, instances)
	assert.Equal(t, 1, links)
}

func TestNewPage_RequiresName(t *testing.T) {
	_, err := production.NewPage("   ")
	assert.Error(t, err)
}

func TestParsePageID(t *testing.T) {
	id := production.NewPageID()

	parsed, err := production.ParsePageID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = production.ParsePageID("")
	assert.Error(t, err)
	_, err = production.ParsePageID("not-a-uuid")
	assert.Error(t, err)
}
