// Package session keeps per-conversation state in process memory.
//
// A session represents one conversation context: the ordered messages
// exchanged between user, model, and tools, the session's tool enablement
// preferences, and its sampling settings. The [Store] owns the state while
// the agent owns the conversation logic.
//
// Key operations:
//
//   - Lifecycle: [Store.GetOrCreate], [Store.Reset]
//   - History: [Store.History], [Store.AppendMessages]
//   - Preferences: [Store.Preferences], [Store.SetPreference], [Store.SetPreferences]
//   - Settings: [Store.Settings], [Store.UpdateSettings], [Store.SetDefaults]
//
// # Identity
//
// Session IDs are opaque strings minted by the front-end. An unknown ID is
// never an error: the session is created on first reference with empty
// history, no explicit preferences, and default settings.
//
// # Concurrency
//
// Store is safe for concurrent use across sessions; a store-level mutex
// guards the map and every session. Within a single session the design
// assumes one writer at a time (one front-end per conversation), so
// read-modify-write sequences across Store calls are not serialized.
//
// # Lifetime
//
// Nothing is persisted. Restarting the server discards all sessions; this
// is deliberate for a single-user local assistant.
package session
