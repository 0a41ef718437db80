package trailer

import "testing"

func TestLocate(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  int
	}{
		{
			name: "block after blank line separator",
			lines: []string{
				"Title\n",
				"\n",
				"Signed-off-by: Alice\n",
				"Reviewed-by: Bob\n",
			},
			want: 2,
		},
		{
			name: "trailing blank lines inside the block are tolerated",
			lines: []string{
				"Title\n",
				"\n",
				"Signed-off-by: Alice\n",
				"\n",
			},
			want: 2,
		},
		{
			name: "no colon in the last paragraph means no block",
			lines: []string{
				"Title\n",
				"Just a sentence with no trailers.\n",
			},
			want: 2,
		},
		{
			name: "entire message is trailers",
			lines: []string{
				"Signed-off-by: Alice\n",
				"Reviewed-by: Bob\n",
			},
			want: 0,
		},
		{
			name:  "empty message",
			lines: nil,
			want:  0,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Locate(c.lines); got != c.want {
				t.Errorf("Locate(%v) = %d, want %d", c.lines, got, c.want)
			}
		})
	}
}
