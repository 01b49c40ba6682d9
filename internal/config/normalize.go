package config

import (
	"fmt"
	"strings"
)

// normalize canonicalizes enumerations and lists in place before defaults are
// applied. It returns a warning for every coerced value.
func normalize(cfg *Config) []string {
	var warnings []string

	cfg.DocumentExtensions = normalizeExtensions("document_extensions", cfg.DocumentExtensions, &warnings)
	cfg.ImageExtensions = normalizeExtensions("image_extensions", cfg.ImageExtensions, &warnings)
	cfg.Exclude = trimStringSlice(cfg.Exclude)
	cfg.IgnoreTargets = trimStringSlice(cfg.IgnoreTargets)
	cfg.IgnoreReasons = trimStringSlice(cfg.IgnoreReasons)

	if raw := string(cfg.Log.Level); strings.TrimSpace(raw) != "" {
		lvl := NormalizeLogLevel(raw)
		if _, err := logLevelNormalizer.NormalizeWithValidation(raw); err != nil {
			warnings = append(warnings, warnUnknown("log.level", raw, string(lvl)))
		}
		cfg.Log.Level = lvl
	}
	if raw := string(cfg.Log.Format); strings.TrimSpace(raw) != "" {
		f := NormalizeLogFormat(raw)
		if _, err := logFormatNormalizer.NormalizeWithValidation(raw); err != nil {
			warnings = append(warnings, warnUnknown("log.format", raw, string(f)))
		}
		cfg.Log.Format = f
	}
	// Unknown output formats are left in place for validation to reject.
	if f, err := ParseOutputFormat(string(cfg.Output.Format)); err == nil {
		cfg.Output.Format = f
	}
	return warnings
}

// normalizeExtensions lowercases, adds the leading dot and removes duplicates
// while keeping order. A nil slice stays nil so defaults apply.
func normalizeExtensions(label string, in []string, warnings *[]string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		ext := strings.ToLower(strings.TrimSpace(v))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	if len(out) != len(in) {
		*warnings = append(*warnings, fmt.Sprintf("normalized %s list (%d -> %d entries)", label, len(in), len(out)))
	}
	return out
}

// trimStringSlice removes empty entries (after trimming whitespace) from a string slice.
// Does not dedupe or sort. Use this for order-sensitive configuration fields.
func trimStringSlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func warnUnknown(field, raw, fallback string) string {
	return fmt.Sprintf("unknown %s %q, using %q", field, raw, fallback)
}
