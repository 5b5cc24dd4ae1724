package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/have-fun-was-taken/yafc-ce/internal/application/analysis/services"
	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/test/helpers"
)

func analyzeReachability(c *catalog.Catalog) *services.Reachability {
	graph := services.NewDependencyGraphBuilder().Build(c)
	return services.NewReachabilityAnalyzer().Analyze(context.Background(), c, graph)
}

func TestReachability_SimpleChainIsAutomatableNow(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	ore := f.Item("iron-ore")
	plate := f.Item("iron-plate")
	drill := f.Machine("drill", 1)
	furnace := f.Machine("furnace", 1)
	mine := f.Recipe("mine-iron", 1, helpers.IDs(drill), nil, helpers.Out(ore, 1))
	smelt := f.Recipe("smelt-iron", 3.2, helpers.IDs(furnace), helpers.In(ore, 1), helpers.Out(plate, 1))
	c := f.Build(t)

	// Act
	r := analyzeReachability(c)

	// Assert
	assert.Equal(t, services.AutomatableNow, r.Status(mine))
	assert.Equal(t, services.AutomatableNow, r.Status(ore))
	assert.Equal(t, services.AutomatableNow, r.Status(smelt))
	assert.Equal(t, services.AutomatableNow, r.Status(plate))
}

func TestReachability_ManualOnlyRecipeIsNotAutomatable(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	character := f.Character()
	plate := f.Item("iron-plate")
	gear := f.Item("gear")
	smelt := f.Recipe("smelt", 1, helpers.IDs(f.Machine("furnace", 1)), nil, helpers.Out(plate, 1))
	handcraft := f.Recipe("handcraft-gear", 1, helpers.IDs(character), helpers.In(plate, 2), helpers.Out(gear, 1))
	c := f.Build(t)

	// Act
	r := analyzeReachability(c)

	// Assert
	assert.True(t, r.IsAutomatableNow(smelt))
	assert.Equal(t, services.NotAutomatable, r.Status(handcraft))
	assert.Equal(t, services.NotAutomatable, r.Status(gear))
}

func TestReachability_MilestoneCeilingPropagatesLater(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	machine := f.Machine("assembler", 1)
	oil := f.Item("oil")
	plastic := f.Item("plastic")
	pump := f.Recipe("pump-oil", 1, helpers.IDs(machine), nil, helpers.Out(oil, 1))
	chem := f.Recipe("make-plastic", 1, helpers.IDs(machine), helpers.In(oil, 1), helpers.Out(plastic, 1))
	f.Later(pump, oil)
	c := f.Build(t)

	// Act
	r := analyzeReachability(c)

	// Assert
	assert.Equal(t, services.AutomatableLater, r.Status(pump))
	assert.Equal(t, services.AutomatableLater, r.Status(oil))
	assert.Equal(t, services.AutomatableLater, r.Status(chem), "AND takes the minimum over ingredients")
	assert.Equal(t, services.AutomatableLater, r.Status(plastic))
	assert.True(t, r.IsAutomatable(plastic))
	assert.False(t, r.IsAutomatableNow(plastic))
}

func TestReachability_CrafterNotAvailableNowCapsProcessAtLater(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	machine := f.Machine("advanced-assembler", 1)
	item := f.Item("widget")
	recipe := f.Recipe("make-widget", 1, helpers.IDs(machine), nil, helpers.Out(item, 1))
	f.Later(machine)
	c := f.Build(t)

	// Act
	r := analyzeReachability(c)

	// Assert
	assert.Equal(t, services.AutomatableLater, r.Status(recipe))
	assert.Equal(t, services.AutomatableLater, r.Status(item))
}

func TestReachability_OrTakesBestSource(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	machine := f.Machine("assembler", 1)
	item := f.Item("widget")
	slow := f.Recipe("slow-widget", 1, helpers.IDs(machine), nil, helpers.Out(item, 1))
	fast := f.Recipe("fast-widget", 1, helpers.IDs(machine), nil, helpers.Out(item, 2))
	f.Later(fast)
	c := f.Build(t)

	// Act
	r := analyzeReachability(c)

	// Assert
	assert.Equal(t, services.AutomatableNow, r.Status(slow))
	assert.Equal(t, services.AutomatableLater, r.Status(fast))
	assert.Equal(t, services.AutomatableNow, r.Status(item))
}

func TestReachability_InaccessibleObjectsAreNotAutomatable(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	machine := f.Machine("assembler", 1)
	item := f.Item("widget")
	recipe := f.Recipe("make-widget", 1, helpers.IDs(machine), nil, helpers.Out(item, 1))
	f.Inaccessible(recipe)
	c := f.Build(t)

	// Act
	r := analyzeReachability(c)

	// Assert
	assert.Equal(t, services.NotAutomatable, r.Status(recipe))
	assert.Equal(t, services.NotAutomatable, r.Status(item))
	assert.Equal(t, services.NotAutomatable, r.Status(catalog.ID(9999)))
}

func TestReachability_SourcelessLoopStaysNotAutomatable(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	machine := f.Machine("assembler", 1)
	a := f.Item("a")
	b := f.Item("b")
	ab := f.Recipe("a-to-b", 1, helpers.IDs(machine), helpers.In(a, 1), helpers.Out(b, 1))
	ba := f.Recipe("b-to-a", 1, helpers.IDs(machine), helpers.In(b, 1), helpers.Out(a, 1))
	c := f.Build(t)

	// Act
	r := analyzeReachability(c)

	// Assert
	for _, id := range []catalog.ID{a, b, ab, ba} {
		assert.Equal(t, services.NotAutomatable, r.Status(id), c.Name(id))
	}
}

func TestReachability_LoopWithOutsideSourceResolves(t *testing.T) {
	// Arrange
	f := helpers.NewCatalogFixture()
	machine := f.Machine("assembler", 1)
	a := f.Item("a")
	b := f.Item("b")
	ab := f.Recipe("a-to-b", 1, helpers.IDs(machine), helpers.In(a, 1), helpers.Out(b, 1))
	ba := f.Recipe("b-to-a", 1, helpers.IDs(machine), helpers.In(b, 1), helpers.Out(a, 1))
	seed := f.Recipe("make-a", 1, helpers.IDs(machine), nil, helpers.Out(a, 1))
	c := f.Build(t)

	// Act
	r := analyzeReachability(c)

	// Assert
	for _, id := range []catalog.ID{a, b, ab, ba, seed} {
		assert.Equal(t, services.AutomatableNow, r.Status(id), c.Name(id))
	}
}

func TestReachability_LaterUpgradesToNow(t *testing.T) {
	// Arrange: the item is first reached through a later source, then through a current one
	f := helpers.NewCatalogFixture()
	machine := f.Machine("assembler", 1)
	base := f.Item("base")
	item := f.Item("widget")
	consumer := f.Item("gadget")
	laterSource := f.Recipe("a-later-widget", 1, helpers.IDs(machine), nil, helpers.Out(item, 1))
	f.Recipe("make-base", 1, helpers.IDs(machine), nil, helpers.Out(base, 1))
	f.Recipe("z-now-widget", 1, helpers.IDs(machine), helpers.In(base, 1), helpers.Out(item, 1))
	use := f.Recipe("make-gadget", 1, helpers.IDs(machine), helpers.In(item, 1), helpers.Out(consumer, 1))
	f.Later(laterSource)
	c := f.Build(t)

	// Act
	r := analyzeReachability(c)

	// Assert
	assert.Equal(t, services.AutomatableNow, r.Status(item))
	assert.Equal(t, services.AutomatableNow, r.Status(use))
	assert.Equal(t, services.AutomatableNow, r.Status(consumer))
}

func TestReachability_OneTimeInvestmentsAreIgnored(t *testing.T) {
	// Arrange: the machine's item cannot be produced, yet the recipe is automatable
	f := helpers.NewCatalogFixture()
	machineItem := f.Item("assembler-item")
	machine := f.Machine("assembler", 1, machineItem)
	item := f.Item("widget")
	recipe := f.Recipe("make-widget", 1, helpers.IDs(machine), nil, helpers.Out(item, 1))
	c := f.Build(t)

	// Act
	r := analyzeReachability(c)

	// Assert
	assert.Equal(t, services.AutomatableNow, r.Status(recipe))
	assert.Equal(t, services.NotAutomatable, r.Status(machine), "placing the machine needs its item")
}

func TestReachability_MonotonicWhenMilestonesAdvance(t *testing.T) {
	build := func(later bool) (*catalog.Catalog, []catalog.ID) {
		f := helpers.NewCatalogFixture()
		machine := f.Machine("assembler", 1)
		a := f.Item("a")
		b := f.Item("b")
		ra := f.Recipe("make-a", 1, helpers.IDs(machine), nil, helpers.Out(a, 1))
		rb := f.Recipe("make-b", 1, helpers.IDs(machine), helpers.In(a, 1), helpers.Out(b, 1))
		if later {
			f.Later(ra)
		}
		return f.Build(t), []catalog.ID{a, b, ra, rb}
	}

	// Arrange
	before, ids := build(true)
	after, _ := build(false)

	// Act
	rBefore := analyzeReachability(before)
	rAfter := analyzeReachability(after)

	// Assert
	for _, id := range ids {
		assert.GreaterOrEqual(t, int(rAfter.Status(id)), int(rBefore.Status(id)), before.Name(id))
	}
}
