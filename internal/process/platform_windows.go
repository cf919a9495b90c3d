//go:build windows

package process

import "os/exec"

// setupProcessGroup keeps exec's default cancellation, which kills the
// direct child only.
func setupProcessGroup(cmd *exec.Cmd) {}
