package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// gitRefPattern allows alphanumeric, hyphens, underscores, slashes, and dots.
	gitRefPattern = regexp.MustCompile(`^[a-zA-Z0-9/_.-]+$`)

	// gitCheckoutPattern is a single directory name under the build directory.
	gitCheckoutPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

	gitRemoteURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^https://[a-zA-Z0-9.-]+/[a-zA-Z0-9_./-]+(?:\.git)?$`),
		regexp.MustCompile(`^git@[a-zA-Z0-9.-]+:[a-zA-Z0-9_./-]+(?:\.git)?$`),
		regexp.MustCompile(`^ssh://[a-zA-Z0-9@.-]+/[a-zA-Z0-9_./-]+(?:\.git)?$`),
		regexp.MustCompile(`^file:///[a-zA-Z0-9_./-]+$`),
		regexp.MustCompile(`^/[a-zA-Z0-9_./-]+$`),
	}

	dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r"}
)

// ValidateGitRef validates a branch or tag name. Empty means the default branch.
func ValidateGitRef(ref string) error {
	if ref == "" {
		return nil
	}

	if len(ref) > 255 {
		return fmt.Errorf("git ref too long (max 255 characters)")
	}

	if strings.ContainsRune(ref, '\x00') {
		return fmt.Errorf("git ref contains null byte")
	}

	if strings.HasPrefix(ref, "-") {
		return fmt.Errorf("git ref cannot start with '-'")
	}

	for _, char := range dangerousChars {
		if strings.Contains(ref, char) {
			return fmt.Errorf("git ref contains invalid character: %q", char)
		}
	}

	if !gitRefPattern.MatchString(ref) {
		return fmt.Errorf("invalid git ref format: must contain only alphanumeric characters, hyphens, underscores, slashes, and dots")
	}

	if strings.Contains(ref, "..") {
		return fmt.Errorf("git ref cannot contain '..'")
	}

	return nil
}

// ValidateGitRemoteURL validates a clone URL.
func ValidateGitRemoteURL(url string) error {
	if url == "" {
		return ErrEmptyInput
	}

	if len(url) > 2048 {
		return fmt.Errorf("remote URL too long (max 2048 characters)")
	}

	if strings.ContainsRune(url, '\x00') {
		return fmt.Errorf("remote URL contains null byte")
	}

	for _, char := range dangerousChars {
		if strings.Contains(url, char) {
			return fmt.Errorf("remote URL contains invalid character: %q", char)
		}
	}

	for _, pattern := range gitRemoteURLPatterns {
		if pattern.MatchString(url) {
			return nil
		}
	}

	return fmt.Errorf("invalid git remote URL format: must be HTTPS, SSH URL, or local path")
}

// ValidateCheckoutName validates the directory a repository is cloned into.
func ValidateCheckoutName(name string) error {
	if name == "" {
		return fmt.Errorf("checkout name cannot be empty")
	}

	if len(name) > 100 {
		return fmt.Errorf("checkout name too long (max 100 characters)")
	}

	if name == "." || name == ".." || !gitCheckoutPattern.MatchString(name) {
		return fmt.Errorf("invalid checkout name %q: must start with alphanumeric and contain only alphanumeric, hyphens, underscores, and dots", name)
	}

	return nil
}
