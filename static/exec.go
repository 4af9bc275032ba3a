package static

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Exec runs name with args, feeding stdin, and returns its stdout and exit
// code. err is non-nil only when the process could not run to completion:
// it failed to start, was killed, or ctx expired.
type Exec func(ctx context.Context, name string, args []string, stdin []byte) (stdout []byte, exitCode int, err error)

// CommandExec is the Exec backed by os/exec.
func CommandExec(ctx context.Context, name string, args []string, stdin []byte) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, -1, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.Exited() {
			return stdout.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, -1, err
	}
	return stdout.Bytes(), 0, nil
}
