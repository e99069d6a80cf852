package apt

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/srcbuild/internal/ports"
)

// MissingPackages returns the packages of pkgs that dpkg does not report as
// installed. It is read-only and used to preview the install step.
func (p *Provider) MissingPackages(ctx context.Context, pkgs []Package) ([]Package, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}

	args := []string{"-W", "-f=${Package}\t${db:Status-Status}\n"}
	for _, pkg := range pkgs {
		args = append(args, pkg.Name)
	}

	// dpkg-query exits 1 when any name is unknown but still lists the rest.
	result, err := p.runner.Run(ctx, "dpkg-query", args...)
	if err != nil {
		return nil, fmt.Errorf("dpkg-query failed: %w", err)
	}
	if result.ExitCode > 1 {
		return nil, fmt.Errorf("dpkg-query exited with status %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	installed := parseInstalled(result)
	missing := make([]Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if !installed[pkg.Name] {
			missing = append(missing, pkg)
		}
	}
	return missing, nil
}

func parseInstalled(result ports.CommandResult) map[string]bool {
	installed := make(map[string]bool)
	for _, line := range strings.Split(result.Stdout, "\n") {
		name, status, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		// Multi-arch packages are listed as name:arch.
		name, _, _ = strings.Cut(name, ":")
		if strings.TrimSpace(status) == "installed" {
			installed[name] = true
		}
	}
	return installed
}
