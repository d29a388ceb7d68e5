package scheduler

import (
	"strings"

	"github.com/mailward/mailward/internal/models"
)

// TagList splits a comma-separated tag string into trimmed, lowercased
// tags, dropping empties.
func TagList(tags string) []string {
	if tags == "" {
		return nil
	}
	out := []string{}
	for _, t := range strings.Split(tags, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ContactMatches reports whether a contact is targeted by the given tags.
// An empty target list matches every contact (broadcast). Matching is
// substring-based against the contact's joined lowercase tag string, not
// token equality: a target of "new" matches a contact tagged "news".
// That looseness is long-standing behavior that campaign configurations
// rely on, so it is kept as-is.
func ContactMatches(contact *models.Contact, targetTags []string) bool {
	if len(targetTags) == 0 {
		return true
	}
	joined := strings.Join(TagList(contact.Tags), ",")
	for _, tag := range targetTags {
		if strings.Contains(joined, tag) {
			return true
		}
	}
	return false
}

// ContactContext builds the per-contact render context. The first
// whitespace run in the contact's name splits first from last name; a
// single-token name leaves last_name empty.
func ContactContext(contact *models.Contact) map[string]string {
	ctx := map[string]string{
		"name":       contact.Name,
		"email":      contact.Email,
		"first_name": "",
		"last_name":  "",
	}
	fields := strings.Fields(contact.Name)
	if len(fields) > 0 {
		ctx["first_name"] = fields[0]
	}
	if len(fields) > 1 {
		ctx["last_name"] = strings.Join(fields[1:], " ")
	}
	return ctx
}
