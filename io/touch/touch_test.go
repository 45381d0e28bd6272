// SPDX-License-Identifier: Unlicense OR MIT

package touch

import (
	"testing"
)

func TestKindString(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		res  string
	}{
		{Cancel, "Cancel"},
		{Press, "Press"},
		{Release, "Release"},
		{Move, "Move"},
		{Press | Release, "Press|Release"},
		{Release | Cancel, "Cancel|Release"},
		{Move | Press, "Press|Move"},
	} {
		t.Run(tc.res, func(t *testing.T) {
			if want, got := tc.res, tc.kind.String(); want != got {
				t.Errorf("got %q; want %q", got, want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, tc := range []struct {
		in   string
		kind Kind
		ok   bool
	}{
		{"press", Press, true},
		{"Down", Press, true},
		{"move", Move, true},
		{"up", Release, true},
		{"cancel", Cancel, true},
		{"hover", 0, false},
	} {
		k, ok := ParseKind(tc.in)
		if k != tc.kind || ok != tc.ok {
			t.Errorf("ParseKind(%q) = %v, %v; want %v, %v", tc.in, k, ok, tc.kind, tc.ok)
		}
	}
}

func TestTerminal(t *testing.T) {
	if Press.Terminal() || Move.Terminal() {
		t.Error("Press or Move reported terminal")
	}
	if !Release.Terminal() || !Cancel.Terminal() {
		t.Error("Release or Cancel not reported terminal")
	}
}
