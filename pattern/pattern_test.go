package pattern

import (
	"regexp"
	"testing"
)

var regexpTests = []struct {
	pat     string
	mode    Mode
	want    string
	wantErr bool

	mustMatch    []string
	mustNotMatch []string
}{
	{pat: ``, want: ``},
	{pat: `foo`, want: `foo`},
	{pat: `foóà中`, mode: Filenames, want: `foóà中`},
	{pat: `.`, want: `(?s)\.`},
	{pat: `foo*`, want: `(?s)foo.*`},
	{pat: `foo*`, mode: Shortest, want: `(?sU)foo.*`},
	{pat: `foo*`, mode: Shortest | Filenames, want: `(?sU)foo[^/]*`},
	{pat: `*foo`, mode: Filenames, want: `(?s)([^/.][^/]*)?foo`},
	{
		pat: `*foo`, mode: Filenames | EntireString, want: `(?s)^([^/.][^/]*)?foo$`,
		mustMatch:    []string{"foo", "prefix-foo", "prefix.foo"},
		mustNotMatch: []string{"foo-suffix", "/prefix/foo", ".foo", ".prefix-foo"},
	},
	{pat: `foo?`, want: `(?s)foo.`},
	{pat: `foo?`, mode: Filenames, want: `(?s)foo[^/]`},
	{pat: `foo[bar]`, want: `(?s)foo[bar]`},
	{pat: `foo[!bar]`, want: `(?s)foo[^bar]`},
	{pat: `foo[[:digit:]]`, want: `(?s)foo[[:digit:]]`},
	{pat: `foo\*bar`, want: `(?s)foo\*bar`},
	{pat: `[`, wantErr: true},
	{pat: `\`, wantErr: true},
	{
		pat: `*.go`, mode: Filenames | EntireString, want: `(?s)^([^/.][^/]*)?\.go$`,
		mustMatch:    []string{"main.go", "a_test.go"},
		mustNotMatch: []string{"sub/main.go", ".hidden.go"},
	},
}

func TestRegexp(t *testing.T) {
	for _, tc := range regexpTests {
		got, err := Regexp(tc.pat, tc.mode)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Regexp(%q, %v) succeeded; wanted error", tc.pat, tc.mode)
			}
			continue
		}
		if err != nil {
			t.Errorf("Regexp(%q, %v) error: %v", tc.pat, tc.mode, err)
			continue
		}
		if tc.want != "" && got != tc.want {
			t.Errorf("Regexp(%q, %v) = %q; want %q", tc.pat, tc.mode, got, tc.want)
		}
		rx, err := regexp.Compile(got)
		if err != nil {
			t.Errorf("Regexp(%q, %v) produced invalid regexp %q: %v", tc.pat, tc.mode, got, err)
			continue
		}
		for _, s := range tc.mustMatch {
			if !rx.MatchString(s) {
				t.Errorf("expected %q to match pattern %q (regexp %q)", s, tc.pat, got)
			}
		}
		for _, s := range tc.mustNotMatch {
			if rx.MatchString(s) {
				t.Errorf("expected %q not to match pattern %q (regexp %q)", s, tc.pat, got)
			}
		}
	}
}

func TestHasMeta(t *testing.T) {
	tests := []struct {
		pat  string
		want bool
	}{
		{"", false},
		{"foo", false},
		{`foo\*bar`, false},
		{"foo*bar", true},
		{"foo?bar", true},
		{"foo[bar]", true},
	}
	for _, tc := range tests {
		if got := HasMeta(tc.pat); got != tc.want {
			t.Errorf("HasMeta(%q) = %v; want %v", tc.pat, got, tc.want)
		}
	}
}

func TestQuoteMeta(t *testing.T) {
	tests := []struct{ pat, want string }{
		{"", ""},
		{"foo", "foo"},
		{"foo*bar?", `foo\*bar\?`},
		{"foo[bar]", `foo\[bar]`},
	}
	for _, tc := range tests {
		if got := QuoteMeta(tc.pat); got != tc.want {
			t.Errorf("QuoteMeta(%q) = %q; want %q", tc.pat, got, tc.want)
		}
	}
}
