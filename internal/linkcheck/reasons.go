package linkcheck

import (
	"fmt"
	"slices"
	"strings"
)

// Reason is a stable failure code attached to a finding.
type Reason string

const (
	ReasonFileNotFound                  Reason = "FILE_NOT_FOUND"
	ReasonMissingFileExtension          Reason = "MISSING_FILE_EXTENSION"
	ReasonMultipleMatchingFiles         Reason = "MULTIPLE_MATCHING_FILES"
	ReasonHeaderTagNotFound             Reason = "HEADER_TAG_NOT_FOUND"
	ReasonCaseSensitiveHeaderTag        Reason = "CASE_SENSITIVE_HEADER_TAG"
	ReasonTooManyHashCharacters         Reason = "TOO_MANY_HASH_CHARACTERS"
	ReasonAbsoluteLinkInvalidStartPoint Reason = "ABSOLUTE_LINK_INVALID_START_POINT"
	ReasonBadRelativeLinkSyntax         Reason = "BAD_RELATIVE_LINK_SYNTAX"
	ReasonPotentialWindowsAbsoluteLink  Reason = "POTENTIAL_WINDOWS_ABSOLUTE_LINK"
	ReasonInvalidImageExtensions        Reason = "INVALID_IMAGE_EXTENSIONS"
	ReasonAnchorTagInvalidQuote         Reason = "ANCHOR_TAG_INVALID_QUOTE"
)

var allReasons = []Reason{
	ReasonFileNotFound,
	ReasonMissingFileExtension,
	ReasonMultipleMatchingFiles,
	ReasonHeaderTagNotFound,
	ReasonCaseSensitiveHeaderTag,
	ReasonTooManyHashCharacters,
	ReasonAbsoluteLinkInvalidStartPoint,
	ReasonBadRelativeLinkSyntax,
	ReasonPotentialWindowsAbsoluteLink,
	ReasonInvalidImageExtensions,
	ReasonAnchorTagInvalidQuote,
}

// AllReasons returns every reason code.
func AllReasons() []Reason {
	return slices.Clone(allReasons)
}

// ParseReason converts a reason name (case-insensitive) into a Reason.
func ParseReason(s string) (Reason, error) {
	candidate := Reason(strings.ToUpper(strings.TrimSpace(s)))
	if slices.Contains(allReasons, candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("unknown reason %q", s)
}

// SortReasons sorts reasons alphabetically in place.
func SortReasons(reasons []Reason) {
	slices.Sort(reasons)
}
