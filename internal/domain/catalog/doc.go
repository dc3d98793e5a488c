// Package catalog holds the capability manifests of every installable app.
//
// The catalog is the static table the intent dispatcher matches against and
// the lifecycle registry validates launches with. Manifests keep their
// registration order; re-registering an id replaces the manifest in place
// without moving it, so first-match routing stays stable.
//
// Components:
//   - Catalog: ordered id -> manifest table
//   - Builtins: the manifests shipped with the host
//   - Loader: reads extra manifests (*.yaml, *.yml, *.toml) from a directory
//   - LazyEntry: defers an app's entry point until first activation
//
// Example Usage:
//
//	cat := catalog.New(log)
//	for _, m := range catalog.Builtins() {
//		_ = cat.Register(m)
//	}
//	res, err := catalog.NewLoader(cat, log).LoadDir(dir)
//	quiz, ok := cat.Get("quiz")
package catalog
