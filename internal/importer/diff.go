package importer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"skillradar/internal/assessment"
)

// Diff renders a unified diff between the stored record (nil when absent) and the incoming one.
// It returns "" when both render identically.
func Diff(stored *assessment.Assessment, incoming assessment.Assessment, source string) (string, error) {
	var oldText string
	if stored != nil {
		b, err := json.MarshalIndent(stored, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal stored %s: %w", stored.ID, err)
		}
		oldText = string(b) + "\n"
	}
	b, err := json.MarshalIndent(incoming, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal incoming %s: %w", incoming.ID, err)
	}
	newText := string(b) + "\n"

	var oldLines []string
	if oldText != "" {
		oldLines = difflib.SplitLines(oldText)
	}
	diff := difflib.UnifiedDiff{
		A:        oldLines,
		B:        difflib.SplitLines(newText),
		FromFile: "stored/" + incoming.ID,
		ToFile:   "import/" + source,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", incoming.ID, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}
