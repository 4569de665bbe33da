// Package client defines the capability contract for talking to the
// cluster API and its two interchangeable backends: a network client
// speaking JSON over HTTP to a real server, and a memory client that
// simulates the server's observable behavior entirely in-process. Both
// present identical semantics so tests can substitute one for the
// other.
package client
