package tenancy

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const tenantColumn = "tenant_id"

// MismatchPolicy decides what happens when a caller explicitly supplies a
// tenant tag that differs from the active tenant.
type MismatchPolicy string

const (
	MismatchReject    MismatchPolicy = "reject"
	MismatchOverwrite MismatchPolicy = "overwrite"
)

func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch MismatchPolicy(s) {
	case "", MismatchReject:
		return MismatchReject, nil
	case MismatchOverwrite:
		return MismatchOverwrite, nil
	default:
		return "", fmt.Errorf("unknown tenant mismatch policy %q", s)
	}
}

// Plugin enforces tenant scoping for every model that has a tenant_id column.
// Reads, updates and deletes get a mandatory tenant predicate; creates get the
// column stamped. Statements are aborted before execution when the context has
// no tenant. Models without the column (the tenant directory) pass through.
type Plugin struct {
	policy MismatchPolicy
}

func NewPlugin(policy MismatchPolicy) *Plugin {
	return &Plugin{policy: policy}
}

func (p *Plugin) Name() string {
	return "tenancy"
}

func (p *Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("tenancy:stamp", p.stamp); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("tenancy:filter", p.filter); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("tenancy:update", p.update); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("tenancy:filter", p.filter); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("tenancy:filter", p.filter); err != nil {
		return err
	}
	return cb.Raw().Before("gorm:raw").Register("tenancy:raw", p.rejectRaw)
}

func (p *Plugin) stamp(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	field := tenantField(db)
	if field == nil {
		return
	}
	tenant, err := FromContext(db.Statement.Context)
	if err != nil {
		db.AddError(err)
		return
	}
	// A conflict update would run against whichever row owns the key, not
	// just rows of the active tenant. Save falls back to this form too.
	if updatesOnConflict(db.Statement) {
		db.AddError(ErrUpsertNotScoped)
		return
	}

	ctx := db.Statement.Context
	switch dest := db.Statement.Dest.(type) {
	case map[string]interface{}:
		db.AddError(p.stampMap(dest, field, tenant.ID))
		return
	case *map[string]interface{}:
		db.AddError(p.stampMap(*dest, field, tenant.ID))
		return
	case []map[string]interface{}:
		db.AddError(p.stampMaps(dest, field, tenant.ID))
		return
	case *[]map[string]interface{}:
		db.AddError(p.stampMaps(*dest, field, tenant.ID))
		return
	}

	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			elem := reflect.Indirect(rv.Index(i))
			if elem.Kind() != reflect.Struct {
				db.AddError(fmt.Errorf("tenancy: cannot stamp %s element", elem.Kind()))
				return
			}
			if err := p.stampStruct(ctx, field, elem, tenant.ID); err != nil {
				db.AddError(err)
				return
			}
		}
	case reflect.Struct:
		if err := p.stampStruct(ctx, field, rv, tenant.ID); err != nil {
			db.AddError(err)
		}
	default:
		db.AddError(fmt.Errorf("tenancy: cannot stamp %s destination", rv.Kind()))
	}
}

func (p *Plugin) stampStruct(ctx context.Context, field *schema.Field, rv reflect.Value, tenantID string) error {
	if current, zero := field.ValueOf(ctx, rv); !zero {
		if err := p.check(current, tenantID); err != nil {
			return err
		}
	}
	return field.Set(ctx, rv, tenantID)
}

func (p *Plugin) stampMap(m map[string]interface{}, field *schema.Field, tenantID string) error {
	for _, key := range []string{field.DBName, field.Name} {
		if current, ok := m[key]; ok {
			if err := p.check(current, tenantID); err != nil {
				return err
			}
			delete(m, key)
		}
	}
	m[field.DBName] = tenantID
	return nil
}

func (p *Plugin) stampMaps(rows []map[string]interface{}, field *schema.Field, tenantID string) error {
	for _, m := range rows {
		if err := p.stampMap(m, field, tenantID); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plugin) filter(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	if db.Statement.SQL.Len() > 0 {
		db.AddError(ErrRawSQLNotScoped)
		return
	}
	field := tenantField(db)
	if field == nil {
		return
	}
	tenant, err := FromContext(db.Statement.Context)
	if err != nil {
		db.AddError(err)
		return
	}
	addTenantClause(db, field, tenant.ID)
}

func (p *Plugin) update(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	field := tenantField(db)
	if field == nil {
		return
	}
	tenant, err := FromContext(db.Statement.Context)
	if err != nil {
		db.AddError(err)
		return
	}

	ctx := db.Statement.Context
	switch dest := db.Statement.Dest.(type) {
	case map[string]interface{}:
		for _, key := range []string{field.DBName, field.Name} {
			if current, ok := dest[key]; ok {
				if err := p.check(current, tenant.ID); err != nil {
					db.AddError(err)
					return
				}
			}
		}
	default:
		if rv := reflect.Indirect(reflect.ValueOf(dest)); rv.Kind() == reflect.Struct && rv.Type() == field.Schema.ModelType {
			if current, zero := field.ValueOf(ctx, rv); !zero {
				if err := p.check(current, tenant.ID); err != nil {
					db.AddError(err)
					return
				}
			}
		}
	}
	if rv := db.Statement.ReflectValue; rv.Kind() == reflect.Struct {
		if current, zero := field.ValueOf(ctx, rv); !zero {
			if err := p.check(current, tenant.ID); err != nil {
				db.AddError(err)
				return
			}
		}
	}

	// Rows are already restricted to the active tenant, so leaving the
	// column out of the SET list keeps every tag unchanged.
	db.Statement.Omits = append(db.Statement.Omits, field.DBName)
	addTenantClause(db, field, tenant.ID)
}

func (p *Plugin) rejectRaw(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	db.AddError(ErrRawSQLNotScoped)
}

func (p *Plugin) check(current interface{}, tenantID string) error {
	value, _ := current.(string)
	if value == "" || value == tenantID {
		return nil
	}
	if p.policy == MismatchOverwrite {
		return nil
	}
	return fmt.Errorf("%w: record tagged %s, active tenant %s", ErrTenantMismatch, value, tenantID)
}

// updatesOnConflict reports whether the statement carries ON CONFLICT DO
// UPDATE. DO NOTHING is harmless and stays allowed; gorm uses it when saving
// associations.
func updatesOnConflict(stmt *gorm.Statement) bool {
	c, ok := stmt.Clauses[clause.OnConflict{}.Name()]
	if !ok {
		return false
	}
	onConflict, ok := c.Expression.(clause.OnConflict)
	if !ok {
		return false
	}
	return onConflict.UpdateAll || len(onConflict.DoUpdates) > 0
}

func tenantField(db *gorm.DB) *schema.Field {
	if db.Statement.Schema == nil {
		return nil
	}
	return db.Statement.Schema.LookUpField(tenantColumn)
}

func addTenantClause(db *gorm.DB, field *schema.Field, tenantID string) {
	db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: field.DBName}, Value: tenantID},
	}})
}
