package local

import "github.com/vk/contestflow/internal/driver"

// NewSet returns a driver set whose capabilities all operate on the host,
// with relative paths resolved against root.
func NewSet(root string) *driver.Set {
	shell := NewShell(root)
	return &driver.Set{
		File:   NewFiles(root),
		Shell:  shell,
		Docker: NewDocker(shell),
	}
}
