// Package app tracks which apps are running and which one is active.
//
// States: active, suspended, background. An app enters the running set on
// its first Launch and leaves it on Terminate. At most one app is active at
// a time and it is always the one the active pointer names; moving the
// pointer suspends the previous holder. Background is only entered through
// Background, never automatically.
//
// Launch attaches the routed intent as the app's pending intent so an app
// that mounts after dispatch can still pick it up with TakePendingIntent.
package app
