package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// UnknownPackage is shown when no manifest names the package.
const UnknownPackage = "_unknown_"

// Manifest is the part of a Cargo.toml the report cares about.
type Manifest struct {
	Path     string
	Root     string
	Package  string
	Settings Settings
}

// Settings are report defaults read from [package.metadata.type-sizes].
// Nil pointers mean "not set".
type Settings struct {
	MaxLength  *int     `toml:"max-length"`
	SortSize   *bool    `toml:"sort-size"`
	Include    []string `toml:"include"`
	Exclude    []string `toml:"exclude"`
	ExcludeStd *bool    `toml:"exclude-std"`
	Output     *string  `toml:"output"`
	OutputDir  *string  `toml:"output-dir"`
	Touch      *string  `toml:"touch"`
}

type cargoToml struct {
	Package struct {
		Name     string `toml:"name"`
		Metadata struct {
			TypeSizes Settings `toml:"type-sizes"`
		} `toml:"metadata"`
	} `toml:"package"`
}

// LoadManifest decodes one Cargo.toml. It fails when the file has no
// [package].name, which is the case for workspace roots.
func LoadManifest(path string) (*Manifest, error) {
	var cfg cargoToml
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	return &Manifest{
		Path:     path,
		Root:     filepath.Dir(path),
		Package:  cfg.Package.Name,
		Settings: cfg.Package.Metadata.TypeSizes,
	}, nil
}

// FindManifest returns the nearest Cargo.toml above startDir that names a
// package. Unreadable manifests and workspace roots are passed over. ok is
// false when none qualifies.
func FindManifest(startDir string) (*Manifest, bool, error) {
	paths, err := FindCargoTomls(startDir)
	if err != nil {
		return nil, false, err
	}
	for _, p := range paths {
		m, err := LoadManifest(p)
		if err != nil {
			continue
		}
		return m, true, nil
	}
	return nil, false, nil
}

// PackageName is m.Package, or UnknownPackage for a nil manifest.
func (m *Manifest) PackageName() string {
	if m == nil || m.Package == "" {
		return UnknownPackage
	}
	return m.Package
}
