// Package formatter maps type names to summary and synthetic-children
// providers.
//
// A Registry holds named categories, searched in creation order. Each
// category entry pairs a type-name Specifier (exact or regular expression)
// with a provider. An entry marked Cascade also applies to aliases of the
// matched type: lookup retries with the alias's canonical name.
//
// Nothing is registered implicitly. Host glue calls Install once with the
// registry it owns.
package formatter
