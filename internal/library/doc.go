// Package library builds and queries the album tree: the access-controlled
// mirror of the media directory that every request is answered from.
//
// An Album corresponds to one directory under the media root and carries two
// permission sets. The resolved set (Perm) controls browsing the album's own
// contents and only ever grows on the way down the tree: a child inherits
// everything its parent resolved plus whatever its own album.yml adds. The
// edge set (Edge) controls traversing into the album from its parent. When a
// manifest deep in the tree introduces a user or group that no ancestor
// knows about, the build walks back up toward the root widening each edge so
// that the new principal can reach the album it was granted, without gaining
// the right to browse any of the intermediate albums.
//
// The tree is immutable once built. Library wraps it in an atomic pointer so
// an administrative reload swaps a fully constructed replacement in a single
// store; concurrent readers see either the old tree or the new one, never a
// partial build.
package library
