package cli

import "testing"

func TestPick(t *testing.T) {
	ids := []string{
		"3f8a1c20-0000-4000-8000-000000000001",
		"9b2d4e77-0000-4000-8000-000000000002",
		"9b7f0a13-0000-4000-8000-000000000003",
	}

	cases := []struct {
		arg    string
		wantID string
		wantOK bool
	}{
		{"1", ids[0], true},
		{"3", ids[2], true},
		{"0", "", false},
		{"4", "", false},
		{"3f8a1c20", ids[0], true},
		{ids[1], ids[1], true},
		{"9b2d", ids[1], true},
		{"zzzz", "", false},
	}
	for _, c := range cases {
		id, ok := pick(c.arg, ids)
		if ok != c.wantOK || id != c.wantID {
			t.Errorf("pick(%q): got (%q, %v), want (%q, %v)", c.arg, id, ok, c.wantID, c.wantOK)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("3f8a1c20-0000-4000-8000-000000000001"); got != "3f8a1c20" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("short input changed: %q", got)
	}
}
