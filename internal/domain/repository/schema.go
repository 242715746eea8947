package repository

import "github.com/jackc/pgx/v5"

// Schema is a quoted schema identifier, safe to splice into SQL text. Build it
// once at startup with NewSchema and share it.
type Schema struct {
	ident string
}

func NewSchema(name string) Schema {
	return Schema{ident: pgx.Identifier{name}.Sanitize()}
}

// Qualify prefixes a table or function name with the schema.
func (s Schema) Qualify(object string) string {
	return s.ident + "." + object
}

func (s Schema) String() string {
	return s.ident
}
