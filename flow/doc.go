// Package flow implements the conversation state machine: one handler per
// state, each receiving a Context with the user's session and the typed
// command to act on. Handlers perform their side effects against the
// commerce backend and the messenger, then return the next state. Transition
// legality is guarded by the dispatcher before a handler runs; handlers only
// decide where the conversation goes next.
package flow
