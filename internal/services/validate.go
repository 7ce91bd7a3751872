package services

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// FieldErrors maps field names to human-readable problems. It is the
// error type handlers translate into 400 responses.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

const maxAttachmentSize = 5 * 1024 * 1024 // 5 MiB

var allowedAttachmentExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// ValidateEmailList checks every entry of a comma-separated address list.
// Each address must contain both "@" and "."; an empty list is invalid.
func ValidateEmailList(value string) error {
	emails := strings.Split(value, ",")
	seen := false
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		seen = true
		if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
			return fmt.Errorf("invalid email address: %s", email)
		}
	}
	if !seen {
		return fmt.Errorf("at least one recipient email is required")
	}
	return nil
}

// ValidateAttachment enforces the size ceiling and extension allow-list
// for uploaded files.
func ValidateAttachment(filename string, size int64) error {
	if size > maxAttachmentSize {
		return fmt.Errorf("file too large, size should not exceed 5 MiB")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAttachmentExts[ext] {
		return fmt.Errorf("file type %q is not allowed", ext)
	}
	return nil
}
