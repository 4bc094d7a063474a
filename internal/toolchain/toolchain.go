// Package toolchain describes the on-disk layout spec section 6.4 assumes
// for a fetched external backend toolchain (clang/lld or an equivalent):
// the manifest that names what is expected to be present and the cache
// directory layout it is expected to be found under. Fetching, verifying,
// and unpacking an actual toolchain archive is explicitly out of this
// exercise's scope (spec section 6.4's Non-goals), so this package is
// documentation-only data types, not a downloader — no example repo is
// grounded on actual subprocess/archive-extraction code for this reason.
package toolchain

// Manifest names one toolchain release this compiler can be pointed at:
// a version tag, the host platform it was built for, and the binaries it
// must contain to satisfy `internal/driver`'s invocation points.
type Manifest struct {
	Version   string
	Platform  string // e.g. "linux-amd64", "darwin-arm64"
	Binaries  []string
	SHA256    string
}

// RequiredBinaries lists the external tool names spec section 6.1's
// pipeline stages assume are reachable once a toolchain is resolved.
func RequiredBinaries() []string {
	return []string{"clang", "lld", "llvm-ar"}
}

// CacheLayout describes where a resolved toolchain's files are expected
// to live once unpacked, relative to the cache root spec section 6.4
// names (`$XDG_CACHE_HOME/thrushc/toolchains/<version>-<platform>/`).
type CacheLayout struct {
	Root     string
	BinDir   string
	LibDir   string
	Manifest Manifest
}

// Resolve builds the expected CacheLayout for m rooted at cacheRoot,
// without touching the filesystem — callers that need to fetch/verify the
// toolchain do so against the paths this returns.
func Resolve(cacheRoot string, m Manifest) CacheLayout {
	dir := cacheRoot + "/toolchains/" + m.Version + "-" + m.Platform
	return CacheLayout{
		Root:     dir,
		BinDir:   dir + "/bin",
		LibDir:   dir + "/lib",
		Manifest: m,
	}
}
