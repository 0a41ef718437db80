package trailer

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in        string
		wantToken string
		wantValue string
	}{
		{"Signed-off-by: Alice", "Signed-off-by", "Alice"},
		{"Fixes=#123", "Fixes", "#123"},
		{"  Reviewed-by :  Bob  ", "Reviewed-by", "Bob"},
		{"NoDelimiter", "NoDelimiter", ""},
		{"Key:", "Key", ""},
		{"Key=Value=WithEquals", "Key", "Value=WithEquals"},
	}
	for _, c := range cases {
		token, value := Parse(c.in)
		if token != c.wantToken || value != c.wantValue {
			t.Errorf("Parse(%q) = (%q, %q), want (%q, %q)", c.in, token, value, c.wantToken, c.wantValue)
		}
	}
}
