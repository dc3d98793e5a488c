package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"github.com/kwararru/shell/internal/infrastructure/logging"
	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// LoadResult reports what a directory scan registered
type LoadResult struct {
	Loaded int      `json:"loaded"`
	Failed int      `json:"failed"`
	IDs    []string `json:"ids"`
}

// Loader reads manifest files from disk into a catalog
type Loader struct {
	catalog *Catalog
	log     *logging.Logger
}

// NewLoader creates a loader that registers into c
func NewLoader(c *Catalog, log *logging.Logger) *Loader {
	return &Loader{
		catalog: c,
		log:     logging.OrNop(log).Named("catalog.loader"),
	}
}

// LoadDir registers every manifest file under dir. Files are registered in
// lexical path order so routing precedence does not depend on the walk.
// A missing directory is not an error. Individual bad files are logged and
// counted as failed.
func (l *Loader) LoadDir(dir string) (LoadResult, error) {
	var res LoadResult

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		l.log.Warn("manifest directory not found", zap.String("dir", dir))
		return res, nil
	}

	paths, err := manifestPaths(dir)
	if err != nil {
		return res, fmt.Errorf("scan %s: %w", dir, err)
	}

	for _, path := range paths {
		m, err := l.LoadFile(path)
		if err != nil {
			l.log.Warn("failed to load manifest", zap.String("path", path), zap.Error(err))
			res.Failed++
			continue
		}
		res.Loaded++
		res.IDs = append(res.IDs, m.ID)
	}

	l.log.Info("manifests loaded",
		zap.String("dir", dir),
		zap.Int("loaded", res.Loaded),
		zap.Int("failed", res.Failed))
	return res, nil
}

// LoadFile parses and registers a single manifest file
func (l *Loader) LoadFile(path string) (types.AppManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.AppManifest{}, err
	}

	m, err := ParseManifest(filepath.Ext(path), data)
	if err != nil {
		return types.AppManifest{}, err
	}
	if err := l.catalog.Register(m); err != nil {
		return types.AppManifest{}, err
	}

	l.log.Debug("manifest registered", zap.String("app_id", m.ID), zap.String("path", path))
	return m, nil
}

// ParseManifest decodes a manifest by file extension (.yaml, .yml or .toml)
// and validates it. Unknown fields are rejected.
func ParseManifest(ext string, data []byte) (types.AppManifest, error) {
	var m types.AppManifest

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(data, &m, yaml.Strict()); err != nil {
			return m, hosterr.NewMalformedManifest("", err.Error())
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return m, hosterr.NewMalformedManifest("", err.Error())
		}
	default:
		return m, hosterr.NewMalformedManifest("", fmt.Sprintf("unsupported manifest format %q", ext))
	}

	for i := range m.IntentFilters {
		m.IntentFilters[i].Action = types.Action(strings.ToUpper(string(m.IntentFilters[i].Action)))
	}
	for i := range m.Permissions {
		m.Permissions[i] = types.Permission(strings.ToUpper(string(m.Permissions[i])))
	}

	return m, ValidateManifest(m)
}

func manifestPaths(dir string) ([]string, error) {
	var (
		mu    sync.Mutex
		paths []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".toml":
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}
