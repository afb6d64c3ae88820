package service

import "strings"

// sanitizeUTF8 drops invalid UTF-8 sequences from extracted text.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}
