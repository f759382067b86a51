// Package dist installs an unpacked database distribution tree into a base
// directory: it resolves the version/platform subtree, copies it file by
// file, restores execute bits on the server binaries, and records a version
// marker so repeated installs against a warm base directory are skipped.
//
// Acquiring the distribution itself (download, archive extraction) is out of
// scope; callers point Unpack at an already-extracted tree laid out as
// <source>/<version>/<platform>.
package dist
