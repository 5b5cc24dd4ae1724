package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/have-fun-was-taken/yafc-ce/internal/domain/catalog"
	"github.com/have-fun-was-taken/yafc-ce/test/helpers"
)

// CatalogContext collects the objects a scenario declares and builds the
// catalog the first time a When step needs it.
type CatalogContext struct {
	fixture       *helpers.CatalogFixture
	ids           map[catalog.Kind]map[string]catalog.ID
	prerequisites map[catalog.ID][]string
	later         []string
	built         *catalog.Catalog
}

func (cc *CatalogContext) reset() {
	cc.fixture = helpers.NewCatalogFixture()
	cc.ids = make(map[catalog.Kind]map[string]catalog.ID)
	cc.prerequisites = make(map[catalog.ID][]string)
	cc.later = nil
	cc.built = nil
}

// ID resolves a declared object name; resources win when kinds share a name
func (cc *CatalogContext) ID(name string) (catalog.ID, error) {
	return cc.IDOf(name, catalog.KindResource, catalog.KindProcess, catalog.KindEntity, catalog.KindTechnology)
}

// IDOf resolves a name declared as one of kinds
func (cc *CatalogContext) IDOf(name string, kinds ...catalog.Kind) (catalog.ID, error) {
	for _, kind := range kinds {
		if id, ok := cc.ids[kind][name]; ok {
			return id, nil
		}
	}
	return catalog.NoID, fmt.Errorf("object %q was not declared in this scenario", name)
}

// Catalog builds the declared objects once; later Given steps are rejected
func (cc *CatalogContext) Catalog() (*catalog.Catalog, error) {
	if cc.built != nil {
		return cc.built, nil
	}

	for tech, names := range cc.prerequisites {
		ids := make([]catalog.ID, 0, len(names))
		for _, name := range names {
			id, err := cc.IDOf(name, catalog.KindTechnology)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		cc.fixture.Object(tech).(*catalog.Technology).Prerequisites = ids
	}
	for _, name := range cc.later {
		id, err := cc.ID(name)
		if err != nil {
			return nil, err
		}
		cc.fixture.Later(id)
	}

	c, err := cc.fixture.TryBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario catalog: %w", err)
	}
	cc.built = c
	return c, nil
}

func (cc *CatalogContext) declare(kind catalog.Kind, name string, id catalog.ID) error {
	if cc.built != nil {
		return fmt.Errorf("cannot declare %q after the catalog was built", name)
	}
	if cc.ids[kind] == nil {
		cc.ids[kind] = make(map[string]catalog.ID)
	}
	if _, exists := cc.ids[kind][name]; exists {
		return fmt.Errorf("%s %q declared twice", kind, name)
	}
	cc.ids[kind][name] = id
	return nil
}

// Given steps

func (cc *CatalogContext) theItems(names string) error {
	for _, name := range splitList(names) {
		if err := cc.declare(catalog.KindResource, name, cc.fixture.Item(name)); err != nil {
			return err
		}
	}
	return nil
}

func (cc *CatalogContext) aMachineWithCraftingSpeed(name string, speed float64) error {
	return cc.declare(catalog.KindEntity, name, cc.fixture.Machine(name, speed))
}

func (cc *CatalogContext) theMachines(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("machine table needs a header and at least one row")
	}
	for _, row := range table.Rows[1:] {
		name := cellValue(table, row, "name")
		speed, err := strconv.ParseFloat(cellValue(table, row, "crafting speed"), 64)
		if err != nil {
			return fmt.Errorf("machine %s: invalid crafting speed: %w", name, err)
		}
		if err := cc.aMachineWithCraftingSpeed(name, speed); err != nil {
			return err
		}
	}
	return nil
}

func (cc *CatalogContext) thePlayerCharacter() error {
	return cc.declare(catalog.KindEntity, "character", cc.fixture.Character())
}

func (cc *CatalogContext) aRecipeTurningInto(name string, seconds float64, crafter, ingredients, products string) error {
	crafterID, err := cc.IDOf(crafter, catalog.KindEntity)
	if err != nil {
		return err
	}
	in, err := cc.parseAmounts(ingredients)
	if err != nil {
		return err
	}
	out, err := cc.parseAmounts(products)
	if err != nil {
		return err
	}

	var ingredientList []catalog.Ingredient
	for _, a := range in {
		ingredientList = append(ingredientList, catalog.Ingredient{Resource: a.id, Amount: a.amount})
	}
	var productList []catalog.Product
	for _, a := range out {
		productList = append(productList, catalog.Product{Resource: a.id, Amount: a.amount})
	}
	return cc.declare(catalog.KindProcess, name, cc.fixture.Recipe(name, seconds, helpers.IDs(crafterID), ingredientList, productList))
}

func (cc *CatalogContext) aRecipeProducing(name string, seconds float64, crafter, products string) error {
	return cc.aRecipeTurningInto(name, seconds, crafter, "", products)
}

func (cc *CatalogContext) aTechnology(name string) error {
	lab, err := cc.lab()
	if err != nil {
		return err
	}
	return cc.declare(catalog.KindTechnology, name, cc.fixture.Technology(name, 10, helpers.IDs(lab), nil))
}

func (cc *CatalogContext) aTechnologyRequiring(name, prerequisites string) error {
	if err := cc.aTechnology(name); err != nil {
		return err
	}
	// resolved at build time so prerequisites may be declared later
	cc.prerequisites[cc.ids[catalog.KindTechnology][name]] = splitList(prerequisites)
	return nil
}

func (cc *CatalogContext) isOnlyAvailableLater(names string) error {
	cc.later = append(cc.later, splitList(names)...)
	return nil
}

func (cc *CatalogContext) lab() (catalog.ID, error) {
	if id, ok := cc.ids[catalog.KindEntity]["lab"]; ok {
		return id, nil
	}
	id := cc.fixture.Machine("lab", 1)
	return id, cc.declare(catalog.KindEntity, "lab", id)
}

type amount struct {
	id     catalog.ID
	amount float64
}

// parseAmounts reads lists such as "2 iron-plate, 1 copper-cable"
func (cc *CatalogContext) parseAmounts(list string) ([]amount, error) {
	var out []amount
	for _, entry := range splitList(list) {
		fields := strings.Fields(entry)
		if len(fields) != 2 {
			return nil, fmt.Errorf("expected \"<amount> <name>\", got %q", entry)
		}
		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in %q: %w", entry, err)
		}
		id, err := cc.IDOf(fields[1], catalog.KindResource)
		if err != nil {
			return nil, err
		}
		out = append(out, amount{id: id, amount: value})
	}
	return out, nil
}

func cellValue(table *godog.Table, row *messages.PickleTableRow, column string) string {
	for i, header := range table.Rows[0].Cells {
		if header.Value == column && i < len(row.Cells) {
			return strings.TrimSpace(row.Cells[i].Value)
		}
	}
	return ""
}

func splitList(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// InitializeCatalogScenario registers the catalog Given steps and returns the
// context other step groups resolve names against.
func InitializeCatalogScenario(ctx *godog.ScenarioContext) *CatalogContext {
	cc := &CatalogContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		cc.reset()
		return ctx, nil
	})

	ctx.Step(`^the items? "([^"]*)"$`, cc.theItems)
	ctx.Step(`^a machine "([^"]*)" with crafting speed (\d+(?:\.\d+)?)$`, cc.aMachineWithCraftingSpeed)
	ctx.Step(`^the machines:$`, cc.theMachines)
	ctx.Step(`^the player character$`, cc.thePlayerCharacter)
	ctx.Step(`^a recipe "([^"]*)" taking (\d+(?:\.\d+)?)s in "([^"]*)" turning "([^"]*)" into "([^"]*)"$`, cc.aRecipeTurningInto)
	ctx.Step(`^a recipe "([^"]*)" taking (\d+(?:\.\d+)?)s in "([^"]*)" producing "([^"]*)"$`, cc.aRecipeProducing)
	ctx.Step(`^a technology "([^"]*)"$`, cc.aTechnology)
	ctx.Step(`^a technology "([^"]*)" requiring "([^"]*)"$`, cc.aTechnologyRequiring)
	ctx.Step(`^"([^"]*)" (?:is|are) only available later$`, cc.isOnlyAvailableLater)

	return cc
}
