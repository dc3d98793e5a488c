// Package types provides shared data structures for the host shell.
//
// Core Types:
//   - AppManifest, IntentFilter, Permission: static app capability declarations
//   - Intent, Action: transient routing requests
//   - RunningApp, State, Stats: lifecycle tracking
//   - Flashcard, Deck, StudySession, QuizResult, Rating: study data
//
// Request Types:
//   - IntentRequest, LaunchRequest: app routing over HTTP
//   - DeckRequest, RateRequest, SessionRequest, QuizResultRequest: study APIs
//   - WSMessage: WebSocket communication with mounted apps
package types
