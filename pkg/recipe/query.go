package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const averageRatingExpr = "COALESCE((SELECT AVG(rr.rating) FROM recipe_ratings rr WHERE rr.recipe_id = recipes.id), 0)"

var (
	sortColumns = map[string]string{
		"created_at": "recipes.created_at",
		"updated_at": "recipes.updated_at",
		"title":      "recipes.title",
		"prep_time":  "recipes.prep_time",
		"cook_time":  "recipes.cook_time",
		"servings":   "recipes.servings",
		"difficulty": "recipes.difficulty",
		"rating":     averageRatingExpr,
	}

	comparisonOps = map[string]string{
		"eq":  "=",
		"gt":  ">",
		"gte": ">=",
		"lt":  "<",
		"lte": "<=",
	}
)

// NumericFilter is a comparison parsed from "op:value" or a bare value.
type NumericFilter struct {
	Op    string
	Value float64
}

// ParseNumericFilter parses raw such as "lte:30" or "30". A missing or
// unknown operator falls back to defaultOp. ok is false for an empty or
// non-numeric value.
func ParseNumericFilter(raw, defaultOp string) (*NumericFilter, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	op, value := defaultOp, raw
	if i := strings.Index(raw, ":"); i >= 0 {
		op, value = strings.ToLower(raw[:i]), raw[i+1:]
		if _, known := comparisonOps[op]; !known {
			op = defaultOp
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, false
	}
	return &NumericFilter{Op: op, Value: v}, true
}

func (f NumericFilter) String() string {
	return fmt.Sprintf("%s:%g", f.Op, f.Value)
}

// RecipeQuery describes a filtered, sorted, paginated recipe listing. All
// string filters are matched as case-insensitive substrings.
type RecipeQuery struct {
	Requester  string
	OwnerID    string
	PublicOnly bool

	Page  int
	Limit int

	Search      string
	Title       string
	Description string
	Difficulty  string
	Author      string

	// TagID restricts to recipes linked to one tag.
	TagID string
	// Tags matches recipes carrying any of the tags.
	Tags []string
	// Ingredients matches recipes using any of the ingredients.
	Ingredients []string
	// IncludeIngredients requires every term to match some ingredient.
	IncludeIngredients []string
	// ExcludeIngredients rejects recipes where any term matches an ingredient.
	ExcludeIngredients []string

	PrepTime *NumericFilter
	CookTime *NumericFilter
	Servings *NumericFilter
	Rating   *NumericFilter

	SortBy    string
	SortOrder string
}

func likePattern(term string) string {
	return database.ContainsPattern(term)
}

func likeExpr(column string) string {
	return database.LowerLike(column)
}

// anyLike builds "(LOWER(col) LIKE ? OR ...)" for every term.
func anyLike(column string, terms []string) (string, []any) {
	parts := make([]string, len(terms))
	args := make([]any, len(terms))
	for i, t := range terms {
		parts[i] = likeExpr(column)
		args[i] = likePattern(t)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func ingredientExists(cond string) string {
	return "EXISTS (SELECT 1 FROM recipe_ingredients ri JOIN ingredients i ON i.id = ri.ingredient_id WHERE ri.recipe_id = recipes.id AND " + cond + ")"
}

// Filter applies visibility and every filter of q to tx. It adds neither
// ordering nor pagination so the same scope serves the COUNT query.
func (q RecipeQuery) Filter(tx *gorm.DB) *gorm.DB {
	switch {
	case q.OwnerID != "":
		tx = tx.Where("recipes.user_id = ?", q.OwnerID)
	case q.PublicOnly:
		tx = tx.Where("recipes.is_public = ?", true)
	case q.Requester != "":
		tx = tx.Where("(recipes.is_public = ? OR recipes.user_id = ?)", true, q.Requester)
	default:
		tx = tx.Where("recipes.is_public = ?", true)
	}

	if q.Search != "" {
		p := likePattern(q.Search)
		tx = tx.Where("("+likeExpr("recipes.title")+" OR "+likeExpr("recipes.description")+" OR "+likeExpr("recipes.instructions")+")", p, p, p)
	}
	if q.Title != "" {
		tx = tx.Where(likeExpr("recipes.title"), likePattern(q.Title))
	}
	if q.Description != "" {
		tx = tx.Where(likeExpr("recipes.description"), likePattern(q.Description))
	}
	switch q.Difficulty {
	case entities.DifficultyEasy, entities.DifficultyMedium, entities.DifficultyHard:
		tx = tx.Where("recipes.difficulty = ?", q.Difficulty)
	}
	if q.Author != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM users u WHERE u.id = recipes.user_id AND u.show_author_name = ? AND "+likeExpr("u.full_name")+")", true, likePattern(q.Author))
	}

	if q.TagID != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.recipe_id = recipes.id AND rt.tag_id = ?)", q.TagID)
	}
	if len(q.Tags) > 0 {
		cond, args := anyLike("t.name", q.Tags)
		tx = tx.Where("EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE rt.recipe_id = recipes.id AND "+cond+")", args...)
	}
	if len(q.Ingredients) > 0 {
		cond, args := anyLike("i.name", q.Ingredients)
		tx = tx.Where(ingredientExists(cond), args...)
	}
	for _, term := range q.IncludeIngredients {
		tx = tx.Where(ingredientExists(likeExpr("i.name")), likePattern(term))
	}
	if len(q.ExcludeIngredients) > 0 {
		cond, args := anyLike("i.name", q.ExcludeIngredients)
		tx = tx.Where("NOT "+ingredientExists(cond), args...)
	}

	tx = compare(tx, "recipes.prep_time", q.PrepTime)
	tx = compare(tx, "recipes.cook_time", q.CookTime)
	tx = compare(tx, "recipes.servings", q.Servings)
	if q.Rating != nil {
		if q.Rating.Op == "eq" {
			tx = tx.Where("ABS("+averageRatingExpr+" - ?) < 0.1", q.Rating.Value)
		} else {
			tx = compare(tx, averageRatingExpr, q.Rating)
		}
	}
	return tx
}

func compare(tx *gorm.DB, expr string, f *NumericFilter) *gorm.DB {
	if f == nil {
		return tx
	}
	op, ok := comparisonOps[f.Op]
	if !ok {
		op = "="
	}
	return tx.Where(expr+" "+op+" ?", f.Value)
}

// SortField returns the whitelisted sort key, created_at for anything else.
func (q RecipeQuery) SortField() string {
	if _, ok := sortColumns[q.SortBy]; ok {
		return q.SortBy
	}
	return "created_at"
}

func (q RecipeQuery) SortDirection() string {
	if strings.EqualFold(q.SortOrder, "asc") {
		return "asc"
	}
	return "desc"
}

// Order sorts by the whitelisted field and breaks ties by id so pages are
// stable.
func (q RecipeQuery) Order(tx *gorm.DB) *gorm.DB {
	desc := q.SortDirection() == "desc"
	return tx.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: sortColumns[q.SortField()], Raw: true}, Desc: desc},
		{Column: clause.Column{Name: "recipes.id", Raw: true}},
	}})
}

// Paginate applies offset and limit. A non-positive limit returns every row.
func (q RecipeQuery) Paginate(tx *gorm.DB) *gorm.DB {
	if q.Limit <= 0 {
		return tx
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return tx.Offset((page - 1) * q.Limit).Limit(q.Limit)
}

func containsAny(name string, terms []string) bool {
	name = strings.ToLower(name)
	for _, t := range terms {
		if strings.Contains(name, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func ingredientNames(r *entities.Recipe) []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		if ri != nil && ri.Ingredient != nil {
			names = append(names, ri.Ingredient.Name)
		}
	}
	return names
}

// MatchesTags reports whether any tag of r contains any of terms.
func MatchesTags(r *entities.Recipe, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, rt := range r.Tags {
		if rt != nil && rt.Tag != nil && containsAny(rt.Tag.Name, terms) {
			return true
		}
	}
	return false
}

// MatchesIncludedIngredients reports whether every term matches at least
// one ingredient of r.
func MatchesIncludedIngredients(r *entities.Recipe, terms []string) bool {
	names := ingredientNames(r)
	for _, t := range terms {
		found := false
		for _, n := range names {
			if containsAny(n, []string{t}) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MatchesExcludedIngredients reports whether no ingredient of r matches
// any term.
func MatchesExcludedIngredients(r *entities.Recipe, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, n := range ingredientNames(r) {
		if containsAny(n, terms) {
			return false
		}
	}
	return true
}

// MatchedIngredients lists the ingredient names of r matching any term.
func MatchedIngredients(r *entities.Recipe, terms []string) []string {
	var out []string
	for _, n := range ingredientNames(r) {
		if containsAny(n, terms) {
			out = append(out, n)
		}
	}
	return out
}

// RatingStats derives the mean rating and the number of ratings. The mean
// of no ratings is 0.
func RatingStats(ratings []*entities.RecipeRating) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings)), len(ratings)
}
