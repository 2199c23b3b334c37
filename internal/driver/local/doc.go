// Package local implements the driver capabilities against the real host:
// the filesystem through package os, subprocesses through os/exec and
// containers through the docker command-line client.
package local
