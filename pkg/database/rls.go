package database

import (
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	tableUsers             = "users"
	tableRecipes           = "recipes"
	tableRecipeRatings     = "recipe_ratings"
	tableRecipeIngredients = "recipe_ingredients"
	tableRecipeTags        = "recipe_tags"
)

// RowLevelSecurity enforces per-principal row policies on every statement
// issued through a Gateway session:
//
//	recipes             select public or own, write own
//	recipe_ratings      write own
//	users               write own row
//	recipe_ingredients  write only for own recipes
//	recipe_tags         write only for own recipes
//
// Anonymous sessions may not write at all. The service role is unrestricted.
type RowLevelSecurity struct{}

func (*RowLevelSecurity) Name() string {
	return "tagameal:row_level_security"
}

func (r *RowLevelSecurity) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("rls:query", r.query); err != nil {
		return err
	}
	if err := db.Callback().Create().After("gorm:before_create").Before("gorm:create").Register("rls:create", r.create); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("rls:update", r.update); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register("rls:delete", r.delete)
}

func column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

func restrict(db *gorm.DB, exprs ...clause.Expression) {
	db.Statement.AddClause(clause.Where{Exprs: exprs})
}

func deny(db *gorm.DB) {
	_ = db.AddError(ErrInsufficientPrivilege)
}

func (r *RowLevelSecurity) query(db *gorm.DB) {
	if db.Error != nil || db.Statement.Table != tableRecipes {
		return
	}

	p := PrincipalOf(db)
	switch p.Role {
	case RoleService:
	case RoleAuthenticated:
		restrict(db, clause.Or(
			clause.Eq{Column: column("is_public"), Value: true},
			clause.Eq{Column: column("user_id"), Value: p.UserID},
		))
	default:
		restrict(db, clause.Eq{Column: column("is_public"), Value: true})
	}
}

func (r *RowLevelSecurity) update(db *gorm.DB) {
	r.mutate(db)
}

func (r *RowLevelSecurity) delete(db *gorm.DB) {
	r.mutate(db)
}

// mutate scopes UPDATE and DELETE statements to the rows the caller may
// change. Rows outside the scope are silently left untouched.
func (r *RowLevelSecurity) mutate(db *gorm.DB) {
	if db.Error != nil {
		return
	}

	p := PrincipalOf(db)
	if p.IsService() {
		return
	}
	if p.IsAnon() {
		deny(db)
		return
	}

	switch db.Statement.Table {
	case tableRecipes, tableRecipeRatings:
		restrict(db, clause.Eq{Column: column("user_id"), Value: p.UserID})
	case tableUsers:
		restrict(db, clause.Eq{Column: column("id"), Value: p.UserID})
	case tableRecipeIngredients, tableRecipeTags:
		restrict(db, clause.Expr{
			SQL:  "? IN (SELECT id FROM recipes WHERE user_id = ?)",
			Vars: []any{column("recipe_id"), p.UserID},
		})
	}
}

// create rejects inserts of rows owned by someone other than the caller.
func (r *RowLevelSecurity) create(db *gorm.DB) {
	if db.Error != nil {
		return
	}

	p := PrincipalOf(db)
	if p.IsService() {
		return
	}
	if p.IsAnon() {
		deny(db)
		return
	}

	switch db.Statement.Table {
	case tableRecipes, tableRecipeRatings:
		if !allEqual(db.Statement, "user_id", p.UserID) {
			deny(db)
		}
	case tableUsers:
		if !allEqual(db.Statement, "id", p.UserID) {
			deny(db)
		}
	case tableRecipeIngredients, tableRecipeTags:
		if !ownsRecipes(db, p.UserID) {
			deny(db)
		}
	}
}

func allEqual(stmt *gorm.Statement, name, want string) bool {
	values, ok := fieldValues(stmt, name)
	if !ok || len(values) == 0 {
		return false
	}
	for _, v := range values {
		if v != want {
			return false
		}
	}
	return true
}

func ownsRecipes(db *gorm.DB, userID string) bool {
	ids, ok := fieldValues(db.Statement, "recipe_id")
	if !ok || len(ids) == 0 {
		return false
	}

	distinct := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		distinct[id] = struct{}{}
	}

	var owned int64
	err := db.Session(&gorm.Session{NewDB: true}).
		Table(tableRecipes).
		Where("id IN ? AND user_id = ?", ids, userID).
		Count(&owned).Error
	return err == nil && owned == int64(len(distinct))
}

func fieldValues(stmt *gorm.Statement, name string) ([]string, bool) {
	if stmt.Schema == nil {
		return nil, false
	}
	field := stmt.Schema.LookUpField(name)
	if field == nil {
		return nil, false
	}

	rv := reflect.Indirect(stmt.ReflectValue)
	var out []string
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			v, _ := field.ValueOf(stmt.Context, reflect.Indirect(rv.Index(i)))
			out = append(out, fmt.Sprint(v))
		}
	case reflect.Struct:
		v, _ := field.ValueOf(stmt.Context, rv)
		out = append(out, fmt.Sprint(v))
	default:
		return nil, false
	}
	return out, true
}
