// Package model provides immutable, schema-derived value objects for
// API resources and ordered collections of them. Every update operation
// returns a new value; the original is never touched and remains valid.
package model
