package shopping

import (
	"log/slog"
	"strings"

	"github.com/wenqilu/mealweek/internal/model"
	"github.com/wenqilu/mealweek/internal/plan"
)

// RecipeSource resolves recipe references during aggregation. A nil
// recipe with a nil error means "not found"; aggregation skips the
// assignment rather than failing.
type RecipeSource interface {
	GetRecipe(id int64) (*model.Recipe, error)
}

// AggregatedIngredient is one merged line of a generated shopping list,
// before persistence assigns it an id.
type AggregatedIngredient struct {
	Name     string
	Quantity string
	Category Category
}

// Aggregator flattens the recipes of a plan's assignments into one
// deduplicated, categorized ingredient list.
type Aggregator struct {
	recipes RecipeSource
	logger  *slog.Logger
}

func NewAggregator(recipes RecipeSource, logger *slog.Logger) *Aggregator {
	return &Aggregator{recipes: recipes, logger: logger}
}

type mergeKey struct {
	name     string
	category Category
}

// Aggregate walks every assignment's recipe and merges ingredients on
// (normalized name, category). The first occurrence keeps its original
// casing; repeats concatenate quantities as "<existing> + <new>".
// Quantities stay free text and are never parsed or summed, so "200克"
// merged with "1斤" yields "200克 + 1斤", not "700克". Known product
// gap; there is no unit conversion table to sum against.
//
// Output order is the insertion order of first occurrence. Assignments
// whose recipe cannot be resolved contribute nothing.
func (a *Aggregator) Aggregate(assignments []plan.Assignment) []AggregatedIngredient {
	out := []AggregatedIngredient{}
	index := make(map[mergeKey]int)

	for _, assignment := range assignments {
		recipe, err := a.recipes.GetRecipe(assignment.Recipe.ID)
		if err != nil {
			a.logger.Warn("recipe lookup failed, skipping assignment",
				"assignment_id", assignment.ID, "recipe_id", assignment.Recipe.ID, "error", err)
			continue
		}
		if recipe == nil {
			a.logger.Debug("recipe not found, skipping assignment",
				"assignment_id", assignment.ID, "recipe_id", assignment.Recipe.ID)
			continue
		}

		for _, ing := range recipe.Ingredients {
			key := mergeKey{
				name:     strings.ToLower(strings.TrimSpace(ing.Name)),
				category: Categorize(ing.Name),
			}
			if i, ok := index[key]; ok {
				out[i].Quantity = out[i].Quantity + " + " + ing.Quantity
				continue
			}
			index[key] = len(out)
			out = append(out, AggregatedIngredient{
				Name:     ing.Name,
				Quantity: ing.Quantity,
				Category: key.category,
			})
		}
	}
	return out
}
