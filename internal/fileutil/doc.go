// Package fileutil provides filesystem helpers for provisioning and
// distribution handling: directory creation, file copying, executable-bit
// forcing, and the temp-root classification used to decide whether a data
// directory is disposable.
package fileutil
