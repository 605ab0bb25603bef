// Package session houses concrete implementations of core.SessionStore.
// The interface itself (and the typed UserSession accessors) live in the core
// package to centralize domain contracts. Keeping only implementations here
// prevents higher level packages (flow, engine) from depending on concrete
// storage.
//
// RedisStore is the durable production store; InMemoryStore exists for tests
// and examples. Additional backends (Postgres, DynamoDB, etc.) can be added
// here without changing any calling code - only the wiring layer needs to
// decide which implementation to instantiate.
package session
