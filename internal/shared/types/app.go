package types

import "time"

// State represents app lifecycle states
type State string

const (
	StateActive     State = "active"
	StateSuspended  State = "suspended"
	StateBackground State = "background"
)

// Valid reports whether s is one of the tracked lifecycle states
func (s State) Valid() bool {
	switch s {
	case StateActive, StateSuspended, StateBackground:
		return true
	}
	return false
}

// Permission is a capability token an app declares in its manifest
type Permission string

const (
	PermissionMicrophone    Permission = "MICROPHONE"
	PermissionCamera        Permission = "CAMERA"
	PermissionContacts      Permission = "CONTACTS"
	PermissionAIAccess      Permission = "AI_ACCESS"
	PermissionStorage       Permission = "STORAGE"
	PermissionCalendar      Permission = "CALENDAR"
	PermissionNotifications Permission = "NOTIFICATIONS"
	PermissionWebSearch     Permission = "WEB_SEARCH"
	PermissionFileAccess    Permission = "FILE_ACCESS"
)

// Permissions lists every known permission token
func Permissions() []Permission {
	return []Permission{
		PermissionMicrophone,
		PermissionCamera,
		PermissionContacts,
		PermissionAIAccess,
		PermissionStorage,
		PermissionCalendar,
		PermissionNotifications,
		PermissionWebSearch,
		PermissionFileAccess,
	}
}

// Valid reports whether p is a known permission token
func (p Permission) Valid() bool {
	for _, known := range Permissions() {
		if p == known {
			return true
		}
	}
	return false
}

// IntentFilter declares which intents an app is willing to handle.
// An empty DataType matches any intent type.
type IntentFilter struct {
	Action   Action `json:"action" yaml:"action" toml:"action"`
	DataType string `json:"data_type,omitempty" yaml:"data_type,omitempty" toml:"data_type,omitempty"`
}

// AppView is whatever an entry point constructs; the host never inspects it
type AppView = any

// EntryPoint builds an app's view. It is only called on first activation.
type EntryPoint func() (AppView, error)

// AppManifest is the static capability declaration of an app
type AppManifest struct {
	ID            string         `json:"id" yaml:"id" toml:"id"`
	Name          string         `json:"name" yaml:"name" toml:"name"`
	Mode          string         `json:"mode" yaml:"mode" toml:"mode"`
	Icon          string         `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
	Permissions   []Permission   `json:"permissions" yaml:"permissions" toml:"permissions"`
	IntentFilters []IntentFilter `json:"intent_filters" yaml:"intent_filters" toml:"intent_filters"`

	// Entry names the entry point for manifests loaded from disk
	Entry      string     `json:"entry_point,omitempty" yaml:"entry_point,omitempty" toml:"entry_point,omitempty"`
	EntryPoint EntryPoint `json:"-" yaml:"-" toml:"-"`
}

// HasPermission reports whether the manifest declares p
func (m *AppManifest) HasPermission(p Permission) bool {
	for _, declared := range m.Permissions {
		if declared == p {
			return true
		}
	}
	return false
}

// RunningApp tracks a launched app
type RunningApp struct {
	Manifest   AppManifest `json:"manifest"`
	State      State       `json:"state"`
	LastActive time.Time   `json:"last_active"`
}

// Stats contains lifecycle registry statistics
type Stats struct {
	RunningApps    int     `json:"running_apps"`
	ActiveApps     int     `json:"active_apps"`
	SuspendedApps  int     `json:"suspended_apps"`
	BackgroundApps int     `json:"background_apps"`
	ActiveAppID    *string `json:"active_app_id,omitempty"`
}

// CatalogStats contains catalog statistics
type CatalogStats struct {
	TotalManifests int            `json:"total_manifests"`
	Modes          map[string]int `json:"modes"`
}
