package change

// Ident renders an identifier, quoting it only when needed. Diff functions
// use it to pre-render COMMENT ON target names.
func Ident(name string) string {
	return quoteIdent(name)
}

// Qualified renders a schema-qualified name.
func Qualified(schema, name string) string {
	return qualify(schema, name)
}
