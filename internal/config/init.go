package config

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
)

const defaultFileContent = `# mdlinkcheck configuration.
# Values may reference environment variables as ${VAR}. Every key can also be
# overridden with MDLINKCHECK_<KEY> (for example MDLINKCHECK_CONCURRENCY=4).

# Files scanned for links and whose headers are valid anchor targets.
document_extensions: [.md, .markdown, .mdown, .mkd]

# Extensions accepted for image links.
image_extensions: [.apng, .avif, .bmp, .gif, .ico, .jpeg, .jpg, .png, .svg, .tif, .tiff, .webp]

# Glob patterns skipped while walking, matched against base names and paths
# relative to the scanned directory.
exclude:
  - node_modules
  - vendor

# Regular expressions matched against raw link targets; matching links are
# not checked.
ignore_targets: []

# Reason codes dropped from findings, for example MISSING_FILE_EXTENSION.
ignore_reasons: []

# Documents checked in parallel (0 uses all CPUs).
concurrency: 0

# Sort the reasons of each finding alphabetically instead of discovery order.
sort_reasons: false

output:
  format: text # text | json

log:
  level: info # debug | info | warn | error
  format: text # text | json

watch:
  debounce: 500ms

metrics:
  # Write Prometheus metrics to this file after each run.
  textfile: ""
`

// Init writes a commented default configuration file.
func Init(path string, force bool) error {
	if path == "" {
		path = DefaultFilename
	}
	if _, err := os.Stat(path); err == nil && !force {
		return errors.NewError(errors.CategoryAlreadyExists, "configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create configuration directory").
			WithContext("path", path).
			Build()
	}
	if err := os.WriteFile(path, []byte(defaultFileContent), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration file").
			WithContext("path", path).
			Build()
	}
	return nil
}
