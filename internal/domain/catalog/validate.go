package catalog

import (
	"fmt"
	"strings"

	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
)

// ValidateManifest checks that a manifest can be registered: a non-empty id,
// known actions in every filter and known permission tokens.
func ValidateManifest(m types.AppManifest) error {
	if strings.TrimSpace(m.ID) == "" {
		return hosterr.NewMalformedManifest(m.ID, "id is required")
	}
	if strings.ContainsAny(m.ID, " /\\") {
		return hosterr.NewMalformedManifest(m.ID, "id must not contain spaces or slashes")
	}

	for i, f := range m.IntentFilters {
		if !f.Action.Valid() {
			return hosterr.NewMalformedManifest(m.ID, fmt.Sprintf("filter %d: unknown action %q", i, f.Action))
		}
		if f.DataType != "" && strings.TrimSpace(f.DataType) != f.DataType {
			return hosterr.NewMalformedManifest(m.ID, fmt.Sprintf("filter %d: data type has surrounding spaces", i))
		}
	}

	for _, p := range m.Permissions {
		if !p.Valid() {
			return hosterr.NewMalformedManifest(m.ID, fmt.Sprintf("unknown permission %q", p))
		}
	}

	return nil
}
