package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// BaseMaster is the repository every overlay inherits from. It is always
// listed last and never looked up.
const BaseMaster = "gentoo"

// Reserved top-level directories. Together with hidden entries they are never
// treated as categories.
var reserved = []string{"eclass", "profiles", "metadata"}

func isReserved(name string) bool {
	return strings.HasPrefix(name, ".") || slices.Contains(reserved, name)
}

// MissingMasterError reports a configured master repository that is not
// available on the system.
type MissingMasterError struct {
	Master string
}

func (e *MissingMasterError) Error() string {
	return fmt.Sprintf("master repository %s is not available on this system; "+
		"add it with `eselect repository enable %s`", e.Master, e.Master)
}

// ErrorCode implements [errors.Coded].
func (e *MissingMasterError) ErrorCode() errors.Code { return errors.ErrCodeMissingMaster }

// Masters checks every configured master against the system repositories
// and returns the layout.conf master list: the configured masters in order,
// followed by [BaseMaster].
func Masters(configured []string, repos RepoLister) ([]string, error) {
	var available []string
	if slices.ContainsFunc(configured, func(m string) bool { return m != BaseMaster }) {
		if repos == nil {
			repos = ReposConf{}
		}
		var err error
		if available, err = repos.Repositories(); err != nil {
			return nil, err
		}
	}

	var out []string
	for _, m := range configured {
		if m == BaseMaster || slices.Contains(out, m) {
			continue
		}
		if !slices.Contains(available, m) {
			return nil, &MissingMasterError{Master: m}
		}
		out = append(out, m)
	}
	return append(out, BaseMaster), nil
}

// RepoName is the repository name of the overlay at root.
func RepoName(root string) string {
	return filepath.Base(filepath.Clean(root))
}

// writeRepoMetadata writes profiles/repo_name and metadata/layout.conf.
func writeRepoMetadata(root string, masters []string) error {
	name := RepoName(root)
	if err := writeFile(filepath.Join(root, "profiles", "repo_name"), []string{name}); err != nil {
		return err
	}
	return writeFile(filepath.Join(root, "metadata", "layout.conf"), []string{
		"repo-name = " + name,
		"masters = " + strings.Join(masters, " "),
	})
}

// writeFile writes lines to path, one per line, creating parent directories.
func writeFile(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
