package normalize

import "testing"

func TestEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  John.DOE@Example.COM  ", "john.doe@example.com"},
		{"plain@example.com", "plain@example.com"},
		{"\tTABS@EXAMPLE.COM\n", "tabs@example.com"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Email(c.in); got != c.want {
			t.Fatalf("Email(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
