// Package intent routes intents to apps.
//
// Matching is a pure function over manifests and an intent: an intent
// filter claims an intent when the actions are equal and the filter's data
// type (if any) glob-matches the intent's type. The dispatcher walks the
// catalog in registration order and stops at the first manifest with a
// matching filter. There is no specificity ranking.
//
// An intent naming a target app skips matching, but only while that app has
// a live handler in the Directory. On resolution the intent is handed to
// the live handler, if any, and the app is always launched with the intent
// attached so an app that mounts later can still read it.
package intent
