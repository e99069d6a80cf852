// Package apt installs the build dependencies on Debian and Ubuntu.
package apt

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/domain/platform"
	"github.com/felixgeelhaar/srcbuild/internal/validation"
)

// Package represents an apt package to install.
type Package struct {
	Name    string
	Version string // Optional: specific version
}

// FullName returns the package name with optional version specifier.
func (p Package) FullName() string {
	if p.Version != "" {
		return fmt.Sprintf("%s=%s", p.Name, p.Version)
	}
	return p.Name
}

// Validate checks the name and version for characters apt would reject or
// a shell could interpret.
func (p Package) Validate() error {
	if err := validation.ValidatePackageName(p.Name); err != nil {
		return fmt.Errorf("invalid package name: %w", err)
	}
	if p.Version != "" {
		if err := validation.ValidatePackageName(p.Version); err != nil {
			return fmt.Errorf("invalid package version: %w", err)
		}
	}
	return nil
}

// ParsePackage parses "name" or "name=version".
func ParsePackage(spec string) (Package, error) {
	name, version, _ := strings.Cut(strings.TrimSpace(spec), "=")
	pkg := Package{Name: name, Version: version}
	if err := pkg.Validate(); err != nil {
		return Package{}, err
	}
	return pkg, nil
}

// DependencySet lists the packages needed for one distribution.
type DependencySet struct {
	Base []string
	Apps []string
}

var commonBase = []string{
	"git", "cmake", "make", "ninja-build", "autoconf", "libtool", "pkg-config",
	"clang", "lld", "libffi-dev", "libxml2-dev", "libxslt1-dev", "libicu-dev",
	"libgnutls28-dev", "libssl-dev", "libcurl4-gnutls-dev", "libtiff-dev",
	"libpng-dev", "libgif-dev", "libcairo2-dev", "libxt-dev", "libxft-dev",
	"libxrandr-dev", "libgl1-mesa-dev", "libfontconfig1-dev", "libfreetype-dev",
	"libavahi-client-dev", "libcups2-dev",
}

var dependencySets = map[string]DependencySet{
	platform.DistroUbuntu: {
		Base: append(append([]string{}, commonBase...), "libjpeg-turbo8-dev"),
		Apps: []string{"libxmu-dev", "libxpm-dev", "libaspell-dev"},
	},
	platform.DistroDebian: {
		Base: append(append([]string{}, commonBase...), "libjpeg62-turbo-dev"),
		Apps: []string{"libxmu-dev", "libxpm-dev", "libaspell-dev"},
	},
}

// DependenciesFor returns the packages to install on d. Application
// dependencies are included only when buildApps is set.
func DependenciesFor(d platform.Distro, buildApps bool) ([]Package, error) {
	set, ok := dependencySets[d.ID]
	if !ok {
		return nil, &pipeline.UnsupportedOSError{ID: d.ID}
	}

	names := set.Base
	if buildApps {
		names = append(append([]string{}, set.Base...), set.Apps...)
	}

	pkgs := make([]Package, 0, len(names))
	for _, name := range names {
		pkgs = append(pkgs, Package{Name: name})
	}
	return pkgs, nil
}
