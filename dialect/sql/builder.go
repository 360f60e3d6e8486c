package sql

import (
	"strings"

	"github.com/syssam/litedao/schema"
	"github.com/syssam/litedao/schema/field"
)

// CreateTable returns the DDL of the table of t. Nested and foreign-key
// fields add an INTEGER column and a FOREIGN KEY constraint; repeated fields
// add nothing, see CreateJunction.
//
//	CREATE TABLE IF NOT EXISTS Widget (id INTEGER, name TEXT, part_id INTEGER,
//	    PRIMARY KEY(id), FOREIGN KEY (part_id) REFERENCES Part(id))
func CreateTable(t *schema.Type) string {
	var b, fks strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(t.Name)
	b.WriteString(" (")
	for i, f := range t.Columns() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Column())
		b.WriteByte(' ')
		switch f.Role {
		case field.RoleNested, field.RoleForeignKey:
			b.WriteString(field.TypeInt.SQL())
			fks.WriteString(", FOREIGN KEY (")
			fks.WriteString(f.Column())
			fks.WriteString(") REFERENCES ")
			fks.WriteString(f.Ref.Table())
			fks.WriteString("(id)")
		default:
			b.WriteString(f.Info.Type.SQL())
		}
	}
	b.WriteString(", PRIMARY KEY(")
	b.WriteString(t.ID.Column())
	b.WriteByte(')')
	b.WriteString(fks.String())
	b.WriteByte(')')
	return b.String()
}

// CreateJunction returns the DDL of the junction table of the repeated field f.
//
//	CREATE TABLE IF NOT EXISTS Widget_Part (Widget_id INTEGER, Part_id INTEGER)
func CreateJunction(t *schema.Type, f *field.Descriptor) string {
	owner, child := junctionColumns(t, f)
	return "CREATE TABLE IF NOT EXISTS " + t.JunctionTable(f) +
		" (" + owner + " INTEGER, " + child + " INTEGER)"
}

// Insert returns the INSERT statement of t, binding every column in order.
func Insert(t *schema.Type) string {
	cols := columnList(t)
	return "INSERT INTO " + t.Name + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
}

// SelectAll returns the statement reading every row of t.
func SelectAll(t *schema.Type) string {
	return "SELECT " + strings.Join(columnList(t), ", ") + " FROM " + t.Name
}

// SelectByID returns the statement reading the row of t with a given id.
func SelectByID(t *schema.Type) string {
	return SelectAll(t) + " WHERE " + t.ID.Column() + " = ?"
}

// MaxID returns the query reading the largest identifier stored in t, or 0.
func MaxID(t *schema.Type) string {
	return "SELECT COALESCE(MAX(" + t.ID.Column() + "), 0) FROM " + t.Name
}

// JunctionInsert returns the statement adding one (owner, child) row to the
// junction table of f.
func JunctionInsert(t *schema.Type, f *field.Descriptor) string {
	owner, child := junctionColumns(t, f)
	return "INSERT INTO " + t.JunctionTable(f) + "(" + owner + ", " + child + ") VALUES (?, ?)"
}

// JunctionSelect returns the query reading the child ids of one owner from
// the junction table of f. The rows are unordered.
func JunctionSelect(t *schema.Type, f *field.Descriptor) string {
	owner, child := junctionColumns(t, f)
	return "SELECT " + child + " FROM " + t.JunctionTable(f) + " WHERE " + owner + " = ?"
}

func junctionColumns(t *schema.Type, f *field.Descriptor) (owner, child string) {
	return t.Name + "_id", f.Ref.Table() + "_id"
}

func columnList(t *schema.Type) []string {
	fs := t.Columns()
	cols := make([]string, len(fs))
	for i, f := range fs {
		cols[i] = f.Column()
	}
	return cols
}
