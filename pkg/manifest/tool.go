package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// DescriptorPlaceholder is replaced by the descriptor file name in
// [Tool.Command].
const DescriptorPlaceholder = "{descriptor}"

// DefaultCommand is the authoritative manifest command.
var DefaultCommand = []string{"ebuild", DescriptorPlaceholder, "manifest"}

// DefaultEnv is added to the environment of the manifest command.
var DefaultEnv = []string{"FEATURES=assume-digests"}

// Tool digests a package directory by running an external command in it.
type Tool struct {
	// Command is the program and its arguments. Defaults to [DefaultCommand].
	Command []string

	// Env is appended to the process environment. Defaults to [DefaultEnv].
	Env []string

	// Erase removes the package directory when the command fails instead of
	// returning a [DigestError].
	Erase bool

	// OnErase is called with the directory of every erased package.
	OnErase func(dir string)

	Logger *log.Logger
}

// Digest runs the command with the first build descriptor of dir.
func (t *Tool) Digest(ctx context.Context, dir string) error {
	descriptor, err := firstDescriptor(dir)
	if err != nil {
		return err
	}

	command := t.Command
	if len(command) == 0 {
		command = DefaultCommand
	}
	args := make([]string, len(command))
	for i, a := range command {
		args[i] = strings.ReplaceAll(a, DescriptorPlaceholder, descriptor)
	}
	env := t.Env
	if env == nil {
		env = DefaultEnv
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	t.logger().Debug("running manifest command", "dir", dir, "cmd", strings.Join(args, " "))
	runErr := cmd.Run()
	if runErr == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	cause := fmt.Errorf("%s: %w", strings.Join(args, " "), runErr)
	if out := strings.TrimSpace(output.String()); out != "" {
		cause = fmt.Errorf("%w\n%s", cause, out)
	}
	if !t.Erase {
		return &DigestError{Dir: dir, Err: cause}
	}

	if err := os.RemoveAll(dir); err != nil {
		return &DigestError{Dir: dir, Err: fmt.Errorf("erase after failure: %w", err)}
	}
	t.logger().Warn("erased package after manifest failure", "dir", dir, "err", runErr)
	if t.OnErase != nil {
		t.OnErase(dir)
	}
	return nil
}

func (t *Tool) logger() *log.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return log.Default()
}

// firstDescriptor returns the lexically first regular *.ebuild file in dir.
func firstDescriptor(dir string) (string, error) {
	entries, err := os.ReadDir(dir) // sorted; no globbing, dir may hold metacharacters
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".ebuild") {
			continue
		}
		if info, err := os.Stat(filepath.Join(dir, e.Name())); err == nil && info.Mode().IsRegular() {
			return e.Name(), nil
		}
	}
	return "", &MissingDescriptorError{Dir: dir}
}
