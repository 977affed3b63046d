// Package errors provides centralized error handling for specforge.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the pipeline. All error types can be checked
// using errors.Is().
//
// This package must not import any other internal packages. Only standard
// library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrInvalidInstruction indicates an instruction that cannot be compiled
	// at all (nil-equivalent input past the boundary checks).
	ErrInvalidInstruction = errors.New("invalid instruction")

	// ErrMissingDependency indicates a collaborator (store, browser, table
	// pack) that was required but not available.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrUnsupportedFeature indicates an instruction asking for a capability
	// no template covers.
	ErrUnsupportedFeature = errors.New("unsupported feature")

	// ErrParsing indicates malformed structured input: table packs,
	// snapshot files, direct-instruction step lists.
	ErrParsing = errors.New("parsing failed")

	// ErrCodeGeneration indicates the renderer could not produce a script
	// from an otherwise valid requirement set.
	ErrCodeGeneration = errors.New("code generation failed")

	// ErrTemplate indicates a template lookup or registration problem.
	ErrTemplate = errors.New("template error")

	// ErrScanningEngineConfig indicates an invalid scanning-engine
	// configuration (unknown rule set, bad policy).
	ErrScanningEngineConfig = errors.New("invalid scanning engine configuration")

	// ErrComplianceValidation indicates success-criterion identifiers that
	// failed format or catalog validation.
	ErrComplianceValidation = errors.New("compliance validation failed")

	// ErrStoreClosed indicates an operation on a closed test-case store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")
)
