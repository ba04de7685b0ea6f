// Package tools provides the command execution boundary shared by packaging
// steps.
//
// Ownership boundary:
// - subprocess invocation with working-dir and environment control
//
// - exit-code normalization for host-tool presence checks
package tools
