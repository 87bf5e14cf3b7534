// Package version holds the host's own semantic version, checked against
// a plugin manifest's optional `//kargo:requires` constraint during
// Discovery (DESIGN.md, discovery). Grounded on reglet-sdk's
// Metadata.MinHostVersion field (go/types.go), which the SDK documents as
// "Placeholder, will be determined by host capabilities" — this package
// and discovery.checkRequires are that mechanism, built with the same
// Masterminds/semver/v3 constraint syntax the teacher pack already pulls
// in for other version-gated decisions.
package version

// Current is this build's semantic version. Bumped at release time.
const Current = "0.1.0"
