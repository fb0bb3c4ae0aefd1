// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"reflect"
	"testing"
)

func TestListEnviron(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		want  []string
	}{
		{
			name:  "Empty",
			pairs: nil,
			want:  []string{},
		},
		{
			name:  "Simple",
			pairs: []string{"A=b", "c="},
			want:  []string{"A=b", "c="},
		},
		{
			name:  "MissingEqual",
			pairs: []string{"A=b", "invalid", "c="},
			want:  []string{"A=b", "c="},
		},
		{
			name:  "DuplicateNames",
			pairs: []string{"A=b", "A=x", "c=", "c=y"},
			want:  []string{"A=x", "c=y"},
		},
		{
			name:  "NoName",
			pairs: []string{"=b", "=c"},
			want:  []string{},
		},
		{
			name:  "EmptyElements",
			pairs: []string{"A=b", "", "", "c="},
			want:  []string{"A=b", "c="},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotEnv := ListEnviron(tc.pairs...)
			got := []string(gotEnv.(listEnviron))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ListEnviron(%q) wanted %q, got %q",
					tc.pairs, tc.want, got)
			}
		})
	}
}

func TestListEnvironGet(t *testing.T) {
	env := ListEnviron("A=b", "C=")
	if got := env.Get("A"); !got.IsSet() || got.Str != "b" {
		t.Fatalf("Get(A) = %+v", got)
	}
	if got := env.Get("C"); !got.IsSet() || got.Str != "" {
		t.Fatalf("Get(C) = %+v", got)
	}
	if got := env.Get("missing"); got.IsSet() {
		t.Fatalf("Get(missing) = %+v, want unset", got)
	}
}

func TestListEnvironEach(t *testing.T) {
	env := ListEnviron("A=1", "B=2", "C=3")
	var names []string
	env.Each(func(name string, vr Variable) bool {
		names = append(names, name)
		return name != "B"
	})
	if want := []string{"A", "B"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("Each stopped early at %q, want %q", names, want)
	}
}

func TestFuncEnviron(t *testing.T) {
	env := FuncEnviron(func(name string) string {
		if name == "FOO" {
			return "bar"
		}
		return ""
	})
	if got := env.Get("FOO"); !got.IsSet() || got.Str != "bar" {
		t.Fatalf("Get(FOO) = %+v", got)
	}
	if got := env.Get("MISSING"); got.IsSet() {
		t.Fatalf("Get(MISSING) = %+v, want unset", got)
	}
}
