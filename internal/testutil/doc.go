// Package testutil contains in-memory fakes for the commerce backend and the
// platform collaborators, used across tests to exercise the conversation
// without network access. The fakes implement the real interfaces with just
// enough behavior to be honest: carts are additive, duplicate customer emails
// conflict, and every outbound message is recorded for assertion. They are
// not intended for production usage.
package testutil
