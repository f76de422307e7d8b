package release

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mhalvorsen/fedora-setup/internal/common"
)

//go:embed releases.yaml
var registryYAML []byte

// ClientInfo describes the remote-desktop client and its package
// repository. RepoDefinition is the verbatim dnf repo file content;
// $releasever and $basearch are expanded by dnf, not by us.
type ClientInfo struct {
	Name           string `yaml:"name"`
	Package        string `yaml:"package"`
	RepoFile       string `yaml:"repo_file"`
	RepoDefinition string `yaml:"repo_definition"`
}

// Symlink is a compat symlink a release needs after package install.
type Symlink struct {
	Target string `yaml:"target"`
	Link   string `yaml:"link"`
}

// ReleaseSpec holds the per-release install parameters.
type ReleaseSpec struct {
	Version  int       `yaml:"version"`
	RPMURL   string    `yaml:"rpm_url,omitempty"`
	SHA256   string    `yaml:"sha256,omitempty"`
	Symlinks []Symlink `yaml:"symlinks,omitempty"`
	Notes    string    `yaml:"notes,omitempty"`
}

// Registry maps Fedora releases to install parameters.
type Registry struct {
	Client   ClientInfo    `yaml:"client"`
	Releases []ReleaseSpec `yaml:"releases"`
}

// LoadRegistry parses the embedded release registry.
func LoadRegistry() (*Registry, error) {
	return parseRegistry(registryYAML)
}

func parseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse release registry: %w", err)
	}
	if reg.Client.Package == "" {
		return nil, fmt.Errorf("release registry has no client package")
	}
	if len(reg.Releases) == 0 {
		return nil, fmt.Errorf("release registry has no releases")
	}

	for i := range reg.Releases {
		if u := reg.Releases[i].RPMURL; u != "" {
			if err := common.ValidateURL(u); err != nil {
				return nil, fmt.Errorf("release %d has a bad rpm_url: %w", reg.Releases[i].Version, err)
			}
		}
	}

	sort.Slice(reg.Releases, func(i, j int) bool {
		return reg.Releases[i].Version < reg.Releases[j].Version
	})

	return &reg, nil
}

// Lookup returns the spec for a Fedora release. An exact match wins;
// otherwise the nearest lower known release applies (a newer Fedora keeps
// using the latest known parameters until the registry catches up).
func (r *Registry) Lookup(version int) (*ReleaseSpec, error) {
	var best *ReleaseSpec
	for i := range r.Releases {
		spec := &r.Releases[i]
		if spec.Version == version {
			return spec, nil
		}
		if spec.Version < version {
			best = spec
		}
	}

	if best == nil {
		return nil, fmt.Errorf("Fedora %d is older than any supported release (oldest: %d)",
			version, r.Releases[0].Version)
	}
	return best, nil
}

// Oldest returns the oldest release the registry knows about.
func (r *Registry) Oldest() int {
	return r.Releases[0].Version
}

// Newest returns the newest release the registry knows about.
func (r *Registry) Newest() int {
	return r.Releases[len(r.Releases)-1].Version
}
