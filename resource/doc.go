// Package resource manages the per-user backend resources a conversation
// leans on: the shopping cart (create, reuse, expire, release) and the
// customer record binding. It owns the cache-or-create policy that the
// original system expressed as implicit wrappers, surfaced here as explicit,
// testable methods.
package resource
