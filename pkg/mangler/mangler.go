// Package mangler runs the system package manager.
package mangler

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// PackageManager installs packages from the configured repositories.
type PackageManager interface {
	Name() string
	Install(ctx context.Context, pkg string, flags ...string) error
}

// New returns the package manager registered under name. An empty name
// selects portage.
func New(name string, logger *log.Logger) (PackageManager, error) {
	switch name {
	case "", "portage":
		return &Portage{Logger: logger}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported package manager: %s", name)
	}
}

// Portage installs with emerge.
type Portage struct {
	// Executable defaults to /usr/bin/emerge.
	Executable string

	// Stdin, Stdout and Stderr default to the process streams so that
	// emerge can ask for confirmation.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger *log.Logger
}

// Name implements [PackageManager].
func (p *Portage) Name() string { return "portage" }

// Install runs "emerge -va pkg flags...".
func (p *Portage) Install(ctx context.Context, pkg string, flags ...string) error {
	exe := p.Executable
	if exe == "" {
		exe = "/usr/bin/emerge"
	}
	args := append([]string{"-va", pkg}, flags...)

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if p.Stdin != nil {
		cmd.Stdin = p.Stdin
	}
	if p.Stdout != nil {
		cmd.Stdout = p.Stdout
	}
	if p.Stderr != nil {
		cmd.Stderr = p.Stderr
	}

	if p.Logger != nil {
		p.Logger.Info("running package manager", "cmd", exe+" "+strings.Join(args, " "))
	}
	if err := cmd.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "%s %s", exe, strings.Join(args, " "))
	}
	return nil
}
