package pkg

import (
	"os/exec"
)

// RunCommandOutput runs a command and returns its combined stdout+stderr.
// On a non-zero exit the captured output is still returned alongside the error.
func RunCommandOutput(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// LookupCommand reports whether name resolves to an executable on PATH.
func LookupCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
