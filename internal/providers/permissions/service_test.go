package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/kwararru/shell/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(manifests ...types.AppManifest) ManifestLookup {
	byID := make(map[string]types.AppManifest)
	for _, m := range manifests {
		byID[m.ID] = m
	}
	return func(id string) (types.AppManifest, bool) {
		m, ok := byID[id]
		return m, ok
	}
}

var journal = types.AppManifest{
	ID:          "voice-journal",
	Permissions: []types.Permission{types.PermissionMicrophone, types.PermissionStorage},
}

func TestRequestAutoGrantsNonDevice(t *testing.T) {
	s := NewService(nil, nil, nil)
	ctx := context.Background()

	ok, err := s.Request(ctx, "quiz", types.PermissionStorage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.Check("quiz", types.PermissionStorage))
	assert.False(t, s.Check("news", types.PermissionStorage))

	s.Revoke("quiz", types.PermissionStorage)
	assert.False(t, s.Check("quiz", types.PermissionStorage))
}

func TestDeviceGate(t *testing.T) {
	ctx := context.Background()

	denied := NewService(nil, nil, nil)
	ok, err := denied.Request(ctx, "voice-journal", types.PermissionMicrophone)
	require.NoError(t, err)
	assert.False(t, ok)

	var asked []types.Permission
	gate := DeviceGateFunc(func(_ context.Context, _ string, p types.Permission) (bool, error) {
		asked = append(asked, p)
		return p == types.PermissionMicrophone, nil
	})
	s := NewService(gate, nil, nil)

	ok, err = s.Request(ctx, "voice-journal", types.PermissionMicrophone)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Request(ctx, "voice-journal", types.PermissionCamera)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []types.Permission{types.PermissionMicrophone, types.PermissionCamera}, asked)
	assert.Equal(t, []types.Permission{types.PermissionMicrophone}, s.Granted("voice-journal"))
}

func TestDeviceGateError(t *testing.T) {
	boom := errors.New("no audio device")
	s := NewService(DeviceGateFunc(func(context.Context, string, types.Permission) (bool, error) {
		return false, boom
	}), nil, nil)

	ok, err := s.Request(context.Background(), "voice-journal", types.PermissionMicrophone)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
}

func TestManifestDeclarationRequired(t *testing.T) {
	s := NewService(AllowAll, lookup(journal), nil)
	ctx := context.Background()

	ok, _ := s.Request(ctx, "voice-journal", types.PermissionCamera)
	assert.False(t, ok)

	ok, _ = s.Request(ctx, "voice-journal", types.PermissionMicrophone)
	assert.True(t, ok)

	ok, _ = s.Request(ctx, "ghost", types.PermissionStorage)
	assert.False(t, ok)

	ok, _ = s.Request(ctx, "voice-journal", types.Permission("TELEPATHY"))
	assert.False(t, ok)

	audit := s.Audit("voice-journal", 0)
	require.Len(t, audit, 3)
	assert.Equal(t, "unknown permission", audit[0].Reason)
	assert.True(t, audit[1].Allowed)
	assert.Equal(t, "not declared in manifest", audit[2].Reason)

	assert.Len(t, s.Audit("", 2), 2)
}

func TestScopedView(t *testing.T) {
	s := NewService(AllowAll, nil, nil)
	scoped := s.For("study")

	ok, err := scoped.Request(context.Background(), types.PermissionFileAccess)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, scoped.Check(types.PermissionFileAccess))

	scoped.Revoke(types.PermissionFileAccess)
	assert.Empty(t, s.Granted("study"))
}

func TestAuditBounded(t *testing.T) {
	s := NewService(nil, nil, nil)
	for i := 0; i < MaxAuditEntries+50; i++ {
		s.Check("quiz", types.PermissionStorage)
	}
	assert.Len(t, s.Audit("", 0), MaxAuditEntries)
}
