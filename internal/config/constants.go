// Package config carries the ambient constants and the project
// manifest format (spec §6 "Inputs to the core") for a Vexel build:
// entry path, project root, target backend, per-backend option map,
// and the three cross-cutting flags (verbose, emit_analysis,
// allow_process) plus the type-strictness level.
//
// Grounded on the teacher's internal/config/constants.go
// (Version/SourceFileExt pattern) for the ambient-constants half, and
// internal/ext/config.go's yaml.v3 manifest-loading shape for
// ProjectManifest.
package config

// Version is the current vexelc version.
var Version = "0.1.0"

// SourceFileExt is the only recognized Vexel source extension.
const SourceFileExt = ".vx"

// ManifestFileName is the conventional project manifest name, searched
// for the same way the teacher's FindConfig walks up from a starting
// directory.
const ManifestFileName = "vexel.yaml"

// DefaultAnalysisSuffix names the persisted analysis report path
// relative to the output stem (spec §6 "Persisted artifacts").
const DefaultAnalysisSuffix = ".analysis.txt"
