package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// StateDirName is the hidden directory overlaysmith keeps inside an
// overlay. Passes never touch hidden entries.
const StateDirName = ".overlaysmith"

const infoFile = "info.json"

// StateDir returns the state directory of overlay.
func StateDir(overlay string) string {
	return filepath.Join(overlay, StateDirName)
}

// DBDir returns where the database of repository is stored in overlay.
func DBDir(overlay, repository string) string {
	return filepath.Join(StateDir(overlay), "db", repository)
}

// Info is the state recorded in an overlay.
type Info struct {
	// Repositories lists the repositories synced into the overlay, sorted.
	Repositories []string `json:"repositories"`
}

// ReadInfo reads the state of overlay. An overlay without state has an
// empty Info.
func ReadInfo(overlay string) (*Info, error) {
	data, err := os.ReadFile(filepath.Join(StateDir(overlay), infoFile))
	if os.IsNotExist(err) {
		return &Info{}, nil
	}
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read overlay state")
	}
	return &info, nil
}

// Add records repository.
func (i *Info) Add(repository string) {
	if !slices.Contains(i.Repositories, repository) {
		i.Repositories = append(i.Repositories, repository)
		slices.Sort(i.Repositories)
	}
}

// Write stores i in overlay.
func (i *Info) Write(overlay string) error {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(StateDir(overlay), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(StateDir(overlay), infoFile), append(data, '\n'), 0o644)
}

// SelectRepository picks the repository for a command: the explicit name
// when given, otherwise the only repository recorded in the overlay.
func (i *Info) SelectRepository(explicit string) (string, error) {
	if explicit != "" {
		if err := errors.ValidatePackageName(explicit); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "repository %q", explicit)
		}
		return explicit, nil
	}
	switch len(i.Repositories) {
	case 0:
		return "", errors.New(errors.ErrCodeInvalidInput, "no repository synced into this overlay; pass --repository")
	case 1:
		return i.Repositories[0], nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "overlay has several repositories (%v); pass --repository", i.Repositories)
	}
}
