package gitcmd

import (
	"fmt"
	"os"
)

// writeSSHWrapper writes a throwaway GIT_SSH script forcing the Gerrit
// identity and disabling host key checking, mirroring what the replication
// user expects. The caller removes the file when done.
func writeSSHWrapper(keyFile, user string) (string, error) {
	wrapper, err := os.CreateTemp("", "gerritops-ssh-*")
	if err != nil {
		return "", fmt.Errorf("failed to create ssh wrapper: %w", err)
	}

	script := fmt.Sprintf("#!/bin/bash\nssh -i %s -l %s -o \"StrictHostKeyChecking no\" $@\n", keyFile, user)
	if _, err = wrapper.WriteString(script); err != nil {
		wrapper.Close()
		os.Remove(wrapper.Name())
		return "", fmt.Errorf("failed to write ssh wrapper: %w", err)
	}
	if err = wrapper.Close(); err != nil {
		os.Remove(wrapper.Name())
		return "", fmt.Errorf("failed to close ssh wrapper: %w", err)
	}
	if err = os.Chmod(wrapper.Name(), 0o755); err != nil {
		os.Remove(wrapper.Name())
		return "", fmt.Errorf("failed to chmod ssh wrapper: %w", err)
	}

	return wrapper.Name(), nil
}
