package webhook

import (
	"fmt"
	"strings"

	"github.com/eventtrackpro/eventtrack-backend/internal/form"
)

// LabelMap maps form-field ids to their display labels. It is built
// from the specific Form linked to the registration's event, so labels
// always come from the form that produced the submission.
type LabelMap map[string]string

// uuidGroups are the dash offsets of a canonical 8-4-4-4-12 identifier
var uuidGroups = []int{8, 4, 4, 4, 12}

// BuildLabelMap derives a label lookup from a form's field list. Fields
// with an empty label get a positional "Question N" placeholder so the
// external payload never carries a blank key.
func BuildLabelMap(fields []form.FormField) LabelMap {
	labels := make(LabelMap, len(fields))
	for i, f := range fields {
		label := strings.TrimSpace(f.Label)
		if label == "" {
			label = fmt.Sprintf("Question %d", i+1)
		}
		labels[f.ID] = label
	}
	return labels
}

// ResolveLabel returns the best-available label for a submission-data
// key. Keys sometimes arrive with the dashes stripped from the field
// identifier, so both the dashed and dash-free forms are looked up. If
// neither matches, the original key is returned unchanged; resolution
// is total and never fails.
func ResolveLabel(labels LabelMap, key string) string {
	if label, ok := labels[key]; ok {
		return label
	}
	if dashed := insertUUIDDashes(key); dashed != key {
		if label, ok := labels[dashed]; ok {
			return label
		}
	}
	if stripped := strings.ReplaceAll(key, "-", ""); stripped != key {
		if label, ok := labels[stripped]; ok {
			return label
		}
	}
	return key
}

// insertUUIDDashes reinserts separators into a 32-character dash-free
// identifier at the canonical 8-4-4-4-12 offsets. Any other input is
// returned as-is.
func insertUUIDDashes(key string) string {
	if len(key) != 32 || !isHex(key) {
		return key
	}

	var b strings.Builder
	b.Grow(36)
	pos := 0
	for i, size := range uuidGroups {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(key[pos : pos+size])
		pos += size
	}
	return b.String()
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// SnakeCase converts a display label to a stable payload key: lowercase,
// spaces to underscores, everything else non-alphanumeric stripped.
func SnakeCase(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return b.String()
}
