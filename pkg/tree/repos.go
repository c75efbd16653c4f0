package tree

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-ini/ini"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// DefaultReposConf is where Portage reads its repository configuration.
const DefaultReposConf = "/etc/portage/repos.conf"

// RepoLister reports the repositories configured on the system.
type RepoLister interface {
	Repositories() ([]string, error)
}

// ReposConf lists the repositories of a repos.conf file or directory.
// Every section except DEFAULT names one repository. A directory is read
// like Portage does: all regular files in lexical order, later files
// overriding earlier ones. A missing path lists nothing.
type ReposConf struct {
	Path string
}

// Repositories implements [RepoLister].
func (r ReposConf) Repositories() ([]string, error) {
	path := r.Path
	if path == "" {
		path = DefaultReposConf
	}
	files, err := confFiles(path)
	if err != nil || len(files) == 0 {
		return nil, err
	}

	sources := make([]any, len(files))
	for i, f := range files {
		sources[i] = f
	}
	cfg, err := ini.LoadSources(ini.LoadOptions{
		Loose:                   true,
		AllowBooleanKeys:        true,
		SkipUnrecognizableLines: true,
	}, sources[0], sources[1:]...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	var names []string
	for _, s := range cfg.SectionStrings() {
		if strings.EqualFold(s, ini.DefaultSection) {
			continue
		}
		names = append(names, s)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func confFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") && !strings.HasSuffix(e.Name(), "~") {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	return files, nil
}

// StaticRepos is a fixed repository list.
type StaticRepos []string

// Repositories implements [RepoLister].
func (s StaticRepos) Repositories() ([]string, error) {
	return slices.Clone(s), nil
}
