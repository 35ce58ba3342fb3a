package provision_test

import (
	"sort"
	"testing"

	"github.com/dkomnin/vpnbot/internal/provision"
)

func TestExtractUsernames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "array of objects",
			input: `[{"username":"a"},{"username":"b"}]`,
			want:  []string{"a", "b"},
		},
		{
			name:  "array of strings",
			input: `["c","d"]`,
			want:  []string{"c", "d"},
		},
		{
			name:  "mixed array",
			input: `[{"username":"a"},"b",{"other":"x"},7]`,
			want:  []string{"a", "b"},
		},
		{
			name:  "users wrapper with strings",
			input: `{"users":["c","d"]}`,
			want:  []string{"c", "d"},
		},
		{
			name:  "users wrapper with objects",
			input: `{"users":[{"username":"a"},{"username":"b"}]}`,
			want:  []string{"a", "b"},
		},
		{
			name:  "single object with username",
			input: `{"username":"e"}`,
			want:  []string{"e"},
		},
		{
			name:  "users field not a list falls through to username",
			input: `{"users":"nope","username":"e"}`,
			want:  []string{"e"},
		},
		{
			name:  "numeric username coerced to text",
			input: `[{"username":42}]`,
			want:  []string{"42"},
		},
		{
			name:  "scalar",
			input: `42`,
			want:  nil,
		},
		{
			name:  "object without recognized fields",
			input: `{"count":3}`,
			want:  nil,
		},
		{
			name:  "not json",
			input: "<html>502 Bad Gateway</html>",
			want:  nil,
		},
		{
			name:  "empty array",
			input: `[]`,
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := provision.ExtractUsernames(tc.input)
			sort.Strings(got)

			if len(got) != len(tc.want) {
				t.Fatalf("ExtractUsernames(%q) = %v, want %v", tc.input, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("ExtractUsernames(%q)[%d] = %q, want %q", tc.input, i, got[i], tc.want[i])
				}
			}
		})
	}
}
