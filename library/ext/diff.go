package ext

import (
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/r3labs/diff/v3"
)

// Diff returns the changelog between a and b.
func Diff(a, b any) (diff.Changelog, error) {
	return diff.Diff(a, b)
}

// DiffLog returns the changelog between a and b together with a printable form, one change per line.
func DiffLog(a, b any) (diff.Changelog, string, error) {
	changes, err := diff.Diff(a, b)
	if err != nil {
		return nil, "", err
	}
	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		lines = append(lines, fmt.Sprintf("  %s %s: %v -> %v", c.Type, strings.Join(c.Path, "."), c.From, c.To))
	}
	return changes, strings.Join(lines, "\n"), nil
}

// DeepCopy copies src into dst, dst must be a pointer.
func DeepCopy(dst, src any) error {
	return copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true})
}
