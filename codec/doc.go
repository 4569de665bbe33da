// Package codec converts between typed model values and their raw wire
// representation: an untyped mapping carrying explicit kind and
// apiVersion discriminators. The JSON byte forms used by the network
// client live here as well.
package codec
