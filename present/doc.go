// Package present turns decoded records into what a debugger front end
// shows: a one-line summary and a set of synthetic children.
//
// Providers follow the pull model of debugger hosts. Update decodes the
// value once, then the host asks for the child count and fetches children
// by index. Vector elements are built only when asked for.
package present
