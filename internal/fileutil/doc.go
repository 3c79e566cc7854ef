// Package fileutil provides file system traversal utilities for the audit
// phases.
//
// The walker is the single source of truth for iterating an audited source
// tree: it applies the conventional dependency/build/vcs exclusions, tolerates
// unreadable entries by collecting errors and continuing, and returns sorted,
// deterministic output. The static scanner and documentation scanner both
// build on it rather than reimplementing filepath.Walk logic.
//
// Bounded file reading lives here too: audited trees are untrusted input, so
// every read of a target file goes through ReadCapped to keep a pathological
// multi-gigabyte file from exhausting memory.
package fileutil
