// Package engine dispatches typed commands through the conversation state
// machine. It loads the user's persisted state, guards the transition
// against the legality table, runs the state handler, settles entry hooks
// and persists the resulting state. Safe for concurrent use across users;
// same-user cart operations are serialized by the resource manager.
package engine
