package epub

import "strings"

// SanitizeFilename creates a safe filename stem from a book or save
// name. The ".epub" extension is appended by the caller.
func SanitizeFilename(name string) string {
	invalid := []string{"\\", "/", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "")
	}

	result = strings.TrimSpace(result)
	result = strings.ReplaceAll(result, " ", "_")

	if len(result) > 100 {
		result = result[:100]
	}

	if result == "" {
		result = "book"
	}

	return result
}
