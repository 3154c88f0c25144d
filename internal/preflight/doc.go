// Package preflight provides readiness checks for the filesystem paths,
// player socket, and external binaries mpvshadow depends on.
//
// These checks run in two contexts:
//   - The session calls RunAll before connecting to the player and refuses
//     to start when the clips or log directory is unusable.
//   - The CLI "mpvshadow doctor" command prints every check with its detail.
package preflight
