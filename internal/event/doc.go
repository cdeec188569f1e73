// Package event holds the domain model for harvested event listings and
// the leaf logic that turns free-text source fields into normalized
// records: Spanish date normalization, category and admission inference,
// and the minimal validation rules.
package event
