package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdlinkcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/mdlinkcheck/internal/linkcheck"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// unsetEnv clears name for the duration of the test.
func unsetEnv(t *testing.T, name string) {
	t.Helper()
	t.Setenv(name, "")
	require.NoError(t, os.Unsetenv(name))
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, linkcheck.DefaultDocumentExtensions, cfg.DocumentExtensions)
	require.Equal(t, linkcheck.DefaultImageExtensions, cfg.ImageExtensions)
	require.Equal(t, []string{"node_modules", "vendor"}, cfg.Exclude)
	require.Equal(t, runtime.GOMAXPROCS(0), cfg.Concurrency)
	require.Equal(t, OutputFormatText, cfg.Output.Format)
	require.Equal(t, LogLevelInfo, cfg.Log.Level)
	require.Equal(t, LogFormatText, cfg.Log.Format)
	require.Equal(t, 500*time.Millisecond, cfg.DebounceDuration())
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestLoad_FileWithExpansionAndNormalization(t *testing.T) {
	t.Setenv("DOCS_GENERATED", "gen")
	path := writeConfig(t, t.TempDir(), `
document_extensions: [MD, md, " .Markdown "]
ignore_targets: ['^${DOCS_GENERATED}/']
ignore_reasons: [missing_file_extension]
concurrency: 3
sort_reasons: true
output:
  format: JSON
log:
  level: WARNING
  format: json
watch:
  debounce: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{".md", ".markdown"}, cfg.DocumentExtensions)
	require.Equal(t, []string{"^gen/"}, cfg.IgnoreTargets)
	require.Equal(t, 3, cfg.Concurrency)
	require.True(t, cfg.SortReasons)
	require.Equal(t, OutputFormatJSON, cfg.Output.Format)
	require.Equal(t, LogLevelWarn, cfg.Log.Level)
	require.Equal(t, LogFormatJSON, cfg.Log.Format)
	require.Equal(t, 2*time.Second, cfg.DebounceDuration())

	patterns, err := cfg.IgnoreTargetPatterns()
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	require.True(t, patterns[0].MatchString("gen/out.md"))

	reasons, err := cfg.IgnoredReasons()
	require.NoError(t, err)
	require.Equal(t, []linkcheck.Reason{linkcheck.ReasonMissingFileExtension}, reasons)
}

func TestLoad_UnknownLogLevelFallsBack(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "log:\n  level: loud\n  format: xml\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, LogLevelInfo, cfg.Log.Level)
	require.Equal(t, LogFormatText, cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "concurrency: 2\noutput:\n  format: text\n")
	t.Setenv("MDLINKCHECK_CONCURRENCY", "6")
	t.Setenv("MDLINKCHECK_FORMAT", "json")
	t.Setenv("MDLINKCHECK_SORT_REASONS", "true")
	t.Setenv("MDLINKCHECK_EXCLUDE", "dist, build ,")
	t.Setenv("MDLINKCHECK_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 6, cfg.Concurrency)
	require.Equal(t, OutputFormatJSON, cfg.Output.Format)
	require.True(t, cfg.SortReasons)
	require.Equal(t, []string{"dist", "build"}, cfg.Exclude)
	require.Equal(t, LogLevelDebug, cfg.Log.Level)
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	t.Setenv("MDLINKCHECK_CONCURRENCY", "many")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_DotEnvFiles(t *testing.T) {
	dir := t.TempDir()
	unsetEnv(t, "MDLINKCHECK_CONCURRENCY")
	unsetEnv(t, "MDLINKCHECK_FORMAT")
	t.Setenv("MDLINKCHECK_LOG_LEVEL", "error")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MDLINKCHECK_CONCURRENCY=5\nMDLINKCHECK_LOG_LEVEL=debug\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("MDLINKCHECK_FORMAT=json\nMDLINKCHECK_CONCURRENCY=9\n"), 0o600))
	path := writeConfig(t, dir, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Concurrency)
	require.Equal(t, OutputFormatJSON, cfg.Output.Format)
	require.Equal(t, LogLevelError, cfg.Log.Level)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "concurrency: [\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := map[string]string{
		"negative concurrency": "concurrency: -1\n",
		"empty extensions":     "document_extensions: []\n",
		"bad extension":        "document_extensions: [\"m d\"]\n",
		"bad glob":             "exclude: [\"[\"]\n",
		"bad regexp":           "ignore_targets: [\"(\"]\n",
		"unknown reason":       "ignore_reasons: [NOT_A_REASON]\n",
		"unknown format":       "output:\n  format: xml\n",
		"bad debounce":         "watch:\n  debounce: soon\n",
		"negative debounce":    "watch:\n  debounce: -1s\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), content)
			_, err := Load(path)
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryValidation), "got %v", err)
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", DefaultFilename)

	require.NoError(t, Init(path, false))
	cfg, err := Load(path)
	require.NoError(t, err)
	def := NewDefaultConfig()
	require.Equal(t, def.DocumentExtensions, cfg.DocumentExtensions)
	require.Equal(t, def.ImageExtensions, cfg.ImageExtensions)
	require.Equal(t, def.Exclude, cfg.Exclude)
	require.Equal(t, def.Concurrency, cfg.Concurrency)
	require.Equal(t, def.Output, cfg.Output)
	require.Equal(t, def.Log, cfg.Log)
	require.Equal(t, def.Watch, cfg.Watch)
	require.Empty(t, cfg.IgnoreTargets)

	err = Init(path, false)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))
	require.NoError(t, Init(path, true))
}

func TestLogLevel_SlogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.SlogLevel().String())
	require.Equal(t, "WARN", LogLevelWarn.SlogLevel().String())
	require.Equal(t, "ERROR", LogLevelError.SlogLevel().String())
	require.Equal(t, "INFO", LogLevel("").SlogLevel().String())
}

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat(" Json ")
	require.NoError(t, err)
	require.Equal(t, OutputFormatJSON, f)

	_, err = ParseOutputFormat("xml")
	require.Error(t, err)
}
