// Package core provides the foundational domain types, interfaces and
// contracts used by ordermesh. It defines the core abstractions for:
//
//   - Commands (typed inbound user actions, parsed once at the transport boundary)
//   - Conversation states (closed enum with a declarative transition table)
//   - Sessions (durable per-user key/value state in a shared store)
//   - The commerce backend (carts, customers, products, fulfillment locations)
//   - Collaborator boundaries (geocoding, payments, outbound messaging)
//   - A backend error taxonomy driving the corrective-action policy
//
// The package intentionally keeps implementation concerns (persistence, HTTP
// plumbing, the dispatch engine, concrete state handlers) out of scope,
// exposing small interfaces to enable custom backends and per-test fakes.
package core
