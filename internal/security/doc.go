// Package security screens the payloads of privileged tools before they run.
//
// # Overview
//
// When the assistant operates in computer-use mode it may ask to execute
// code, run shell commands, or read files on the host. This package holds
// the checks that stand between those requests and the operating system:
//
//   - Gate: a deny-list scan over code and command payloads that rejects
//     obviously destructive operations (recursive root deletes, disk
//     formatting, fork bombs, shutdown requests) before anything executes.
//   - ExpandPath: path normalization for the file tools ("~" expansion,
//     absolute resolution, cleaning).
//
// # What the Gate is not
//
// The Gate is an advisory heuristic, not a sandbox. A payload that passes
// the scan still runs with the full privileges of the server process, and a
// determined adversary can encode destructive intent the substring scan will
// not see. Deployments that need real isolation must provide it outside this
// process (containers, VMs, dedicated users).
//
// # Error Handling
//
// The Gate both logs and returns on a match. This is a deliberate exception
// to the "handle errors once" rule: security events need an audit trail AND
// the caller must receive the error to deny the operation.
//
// All gate rejections wrap ErrDangerousOperation so callers can classify
// them with errors.Is.
package security
