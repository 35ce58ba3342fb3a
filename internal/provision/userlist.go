package provision

import (
	"encoding/json"
	"fmt"
)

// ExtractUsernames pulls usernames out of a panel listing response whose
// shape varies between panel versions. Handled shapes, in order:
//
//  1. an array of objects carrying a "username" field
//  2. an array of plain strings
//  3. an object whose "users" field is an array of either of the above
//  4. an object carrying a single "username" field
//
// Anything else, including bodies that are not valid JSON, yields an empty
// result. Order and uniqueness of the result are not guaranteed; callers
// sort before display.
func ExtractUsernames(body string) []string {
	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil
	}

	switch v := data.(type) {
	case []any:
		return usernamesFromList(v)
	case map[string]any:
		if users, ok := v["users"].([]any); ok {
			return usernamesFromList(users)
		}
		if name, ok := v["username"]; ok {
			return []string{coerceString(name)}
		}
	}
	return nil
}

func usernamesFromList(items []any) []string {
	var usernames []string
	for _, item := range items {
		switch entry := item.(type) {
		case map[string]any:
			if name, ok := entry["username"]; ok {
				usernames = append(usernames, coerceString(name))
			}
		case string:
			usernames = append(usernames, entry)
		}
	}
	return usernames
}

// coerceString renders a decoded JSON value as text the way the panel's own
// tooling does: strings pass through, anything else is formatted.
func coerceString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
