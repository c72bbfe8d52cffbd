package content

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Egham-7/site-context/internal/models"
)

// Identifier is a parsed `type-id` pair.
type Identifier struct {
	Type string
	ID   uint64
}

func (i Identifier) String() string {
	return i.Type + "-" + strconv.FormatUint(i.ID, 10)
}

// ParseIdentifier splits a `type-id` identifier at its last hyphen so types
// may contain hyphens themselves.
func ParseIdentifier(raw string) (Identifier, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	idx := strings.LastIndex(s, "-")
	if idx <= 0 || idx == len(s)-1 {
		return Identifier{}, models.NewValidationError(
			fmt.Sprintf("identifier %q must be `type-id` or `multi`", raw), nil)
	}

	id, err := strconv.ParseUint(s[idx+1:], 10, 64)
	if err != nil || id == 0 {
		return Identifier{}, models.NewValidationError(
			fmt.Sprintf("identifier %q has an invalid numeric id", raw), err)
	}

	return Identifier{Type: s[:idx], ID: id}, nil
}
