// Package paths provides path helpers shared by the resolver and the CLI.
//
// It owns the project layout (config/config.yml and its committed
// template), home directory expansion, canonicalisation of configured
// roots and idempotent directory creation.
//
// # XDG Base Directory Compliance
//
// Home and state directories come from github.com/adrg/xdg, so "~" in a
// configured path expands the same way on Linux, macOS and Windows.
//
// # Canonical Forms
//
// [Canonical] requires the path to exist and resolves all symbolic links.
// [CanonicalPrefix] tolerates missing trailing components, which is what
// an output root that has not been created yet needs:
//
//	paths.CanonicalPrefix("/tmp/link/not/yet")   // /private/tmp/target/not/yet
package paths
