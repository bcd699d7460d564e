package manifest

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifestDoc is the yaml shape of a manifest catalogue.
type manifestDoc struct {
	Name    string     `yaml:"name"`
	Entries []rawEntry `yaml:"entries"`
}

// rawEntry is the union of all entry fields; Type selects the variant.
type rawEntry struct {
	Type       string `yaml:"type"` // "file", "directory", "symlink"
	Path       string `yaml:"path"`
	Source     string `yaml:"source,omitempty"`
	Size       *int64 `yaml:"size,omitempty"`
	MD5        string `yaml:"md5,omitempty"`
	Executable bool   `yaml:"executable,omitempty"`
	Optional   bool   `yaml:"optional,omitempty"`
	Media      string `yaml:"media,omitempty"`
	Target     string `yaml:"target,omitempty"`
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load reads and validates a manifest catalogue file.
func Load(filePath string) (*Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", filePath, err)
	}
	return Parse(data)
}

// Parse decodes and validates a manifest catalogue document.
func Parse(data []byte) (*Manifest, error) {
	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if errs := validate(&doc); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	m := &Manifest{Name: doc.Name}
	for _, raw := range doc.Entries {
		switch raw.Type {
		case "directory":
			m.Entries = append(m.Entries, Dir{Name: raw.Path})
		case "symlink":
			m.Entries = append(m.Entries, Symlink{Name: raw.Path, Target: raw.Target})
		case "file":
			size := int64(-1)
			if raw.Size != nil {
				size = *raw.Size
			}
			m.Entries = append(m.Entries, File{
				Name:       raw.Path,
				Source:     raw.Source,
				Size:       size,
				MD5:        raw.MD5,
				Executable: raw.Executable,
				Optional:   raw.Optional,
				MediaLabel: raw.Media,
			})
		}
	}
	return m, nil
}

var md5Pattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// validate checks a manifest document for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func validate(doc *manifestDoc) []string {
	var errs []string

	if len(doc.Entries) == 0 {
		errs = append(errs, "at least one entry is required")
	}

	// Directories declared anywhere in the manifest; files and symlinks
	// placed inside one must follow it, because installation runs in order
	// and never creates parents.
	declaredDirs := make(map[string]bool)
	for _, e := range doc.Entries {
		if e.Type == "directory" {
			declaredDirs[path.Clean(e.Path)] = true
		}
	}

	seen := make(map[string]int)
	seenDirs := make(map[string]bool)
	for i, e := range doc.Entries {
		prefix := fmt.Sprintf("entry[%d]", i)
		if e.Path != "" {
			prefix = fmt.Sprintf("entry '%s'", e.Path)
		}

		switch e.Type {
		case "file", "directory", "symlink":
		case "":
			errs = append(errs, prefix+": type is required")
			continue
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown type '%s' — supported types: file, directory, symlink", prefix, e.Type))
			continue
		}

		if e.Path == "" {
			errs = append(errs, prefix+": path is required")
			continue
		}
		clean := path.Clean(e.Path)
		if path.IsAbs(e.Path) || clean == ".." || strings.HasPrefix(clean, "../") {
			errs = append(errs, prefix+": path must be relative and stay inside the target")
		}
		if prev, dup := seen[clean]; dup {
			errs = append(errs, fmt.Sprintf("%s: duplicate of entry[%d]", prefix, prev))
		}
		seen[clean] = i

		if e.Type == "symlink" && e.Target == "" {
			errs = append(errs, prefix+": symlink target is required")
		}
		if e.Type == "file" {
			if e.Size != nil && *e.Size < 0 {
				errs = append(errs, prefix+": size must not be negative")
			}
			if e.MD5 != "" && !md5Pattern.MatchString(e.MD5) {
				errs = append(errs, prefix+": md5 must be 32 lowercase hex digits")
			}
		}

		if e.Type != "directory" {
			parent := path.Dir(clean)
			if parent != "." && declaredDirs[parent] && !seenDirs[parent] {
				errs = append(errs, fmt.Sprintf("%s: must follow its directory entry '%s'", prefix, parent))
			}
		} else {
			seenDirs[clean] = true
		}
	}

	return errs
}
