// Package scaffold runs the project creation pipeline: directory gate,
// template version resolution, archive fetch and extraction, manifest
// rewrite and dependency install. Every path the run creates is written to a
// ledger, and any failure after the directory gate rolls the ledger back so
// the target directory ends up as it was found.
package scaffold
