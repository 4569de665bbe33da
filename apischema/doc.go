// Package apischema loads versioned API schema documents and exposes
// them as an immutable catalog of kind definitions. The catalog is the
// single source of truth for which (apiVersion, kind) pairs exist and
// what fields they carry; it is built once at startup and is safe for
// unsynchronized concurrent reads afterwards.
package apischema
