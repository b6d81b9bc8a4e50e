package tenant

import (
	"reflect"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const tenantColumn = "tenant_id"

// ScopePlugin enforces tenant isolation on every GORM operation that touches a
// model embedding Scoped. Services issue plain queries ("find all jobs") and
// the plugin merges `tenant_id = <active tenant>` into the statement, or
// injects the field on inserts, based on the RequestContext carried by the
// statement's context.
//
// Behavior matrix:
//   - model not tenant-owned          -> statement untouched
//   - no tenant id in context         -> statement untouched (maintenance and
//     worker code paths run unscoped on purpose)
//   - reads, updates, deletes         -> tenant equality merged into WHERE,
//     unless the caller already pins tenant_id to an explicit value
//   - creates (single and batch)      -> TenantID set on every row whose field
//     is empty; rows that already carry a tenant id are left alone
//
// The plugin never swallows or rewrites data-layer errors.
type ScopePlugin struct{}

func (ScopePlugin) Name() string { return "tenant:scope" }

func (p ScopePlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant:scope_query", scopeFilter); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenant:scope_row", scopeFilter); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant:scope_update", scopeFilter); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenant:scope_delete", scopeFilter); err != nil {
		return err
	}
	return db.Callback().Create().Before("gorm:create").Register("tenant:scope_create", scopeCreate)
}

// scopeFilter merges the active tenant into the WHERE clause of reads, counts,
// aggregates, updates and deletes.
func scopeFilter(tx *gorm.DB) {
	stmt := tx.Statement
	tenantID, ok := TenantID(stmt.Context)
	if !ok || !schemaOwned(stmt.Schema) {
		return
	}
	if wherePinsTenant(stmt) {
		return
	}

	stmt.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: tenantColumn},
			Value:  tenantID,
		},
	}})
}

// scopeCreate stamps the active tenant onto each inserted row. Rows that
// already declare a tenant id keep the caller's value.
func scopeCreate(tx *gorm.DB) {
	stmt := tx.Statement
	tenantID, ok := TenantID(stmt.Context)
	if !ok || stmt.Schema == nil || !schemaOwned(stmt.Schema) {
		return
	}

	field := stmt.Schema.LookUpField(tenantColumn)
	if field == nil {
		return
	}

	switch stmt.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < stmt.ReflectValue.Len(); i++ {
			setTenantField(tx, field, stmt.ReflectValue.Index(i), tenantID)
		}
	case reflect.Struct:
		setTenantField(tx, field, stmt.ReflectValue, tenantID)
	}
}

func setTenantField(tx *gorm.DB, field *schema.Field, rv reflect.Value, tenantID string) {
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if _, isZero := field.ValueOf(tx.Statement.Context, rv); isZero {
		if err := field.Set(tx.Statement.Context, rv, tenantID); err != nil {
			tx.AddError(err)
		}
	}
}

// schemaOwned reports whether the statement's model embeds Scoped. The scoped
// set is derived from the type system, so it cannot drift from the schema.
func schemaOwned(s *schema.Schema) bool {
	if s == nil {
		return false
	}
	_, ok := reflect.New(s.ModelType).Interface().(Owned)
	return ok
}

// wherePinsTenant reports whether the caller's filter already constrains
// tenant_id to an explicit scalar value. In that case the explicit value wins
// and no ambient tenant is merged in; nested conditions (ranges, negations,
// IN lists) do not count as a pin.
func wherePinsTenant(stmt *gorm.Statement) bool {
	c, ok := stmt.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	return exprsPinTenant(where.Exprs)
}

func exprsPinTenant(exprs []clause.Expression) bool {
	for _, e := range exprs {
		switch v := e.(type) {
		case clause.Eq:
			if columnName(v.Column) == tenantColumn {
				return true
			}
		case clause.AndConditions:
			if exprsPinTenant(v.Exprs) {
				return true
			}
		case clause.Expr:
			if rawExprPinsTenant(v.SQL) {
				return true
			}
		case clause.NamedExpr:
			if rawExprPinsTenant(v.SQL) {
				return true
			}
		}
	}
	return false
}

func rawExprPinsTenant(sql string) bool {
	s := strings.ToLower(sql)
	for from := 0; ; {
		i := strings.Index(s[from:], tenantColumn)
		if i < 0 {
			return false
		}
		i += from
		from = i + len(tenantColumn)

		// Only a whole-word tenant_id counts; columns like prev_tenant_id
		// must not suppress the ambient scope.
		if i > 0 && isIdentChar(s[i-1]) {
			continue
		}
		rest := strings.TrimSpace(s[from:])
		// `tenant_id = ?` pins; `tenant_id <> ?`, `tenant_id IN (...)` etc. do not.
		if strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==") {
			return true
		}
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func columnName(col interface{}) string {
	switch v := col.(type) {
	case string:
		return v
	case clause.Column:
		return v.Name
	}
	return ""
}
