// Package binary locates the external tools used to decode non-wave inputs.
package binary

import (
	"os/exec"
)

// Available checks if a binary is available in the system PATH.
func Available(binName string) (string, bool) {
	path, err := exec.LookPath(binName)

	return path, err == nil
}

// Missing returns the names that are not in the system PATH.
func Missing(names ...string) []string {
	var out []string

	for _, name := range names {
		if _, ok := Available(name); !ok {
			out = append(out, name)
		}
	}

	return out
}
