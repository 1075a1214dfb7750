package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCollapse(t *testing.T) {
	tests := []struct {
		word string
		want []CollapsedRune
	}{
		{"", []CollapsedRune{}},
		{"a", []CollapsedRune{{'a', false}}},
		{"hello", []CollapsedRune{{'h', false}, {'e', false}, {'l', true}, {'o', false}}},
		{"aaa", []CollapsedRune{{'a', true}}},
		{"coffee", []CollapsedRune{{'c', false}, {'o', false}, {'f', true}, {'e', true}}},
	}
	for _, tt := range tests {
		if got := Collapse(tt.word); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Collapse(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestLettersOnly(t *testing.T) {
	tests := map[string]string{
		"don't":  "dont",
		"e-mail": "email",
		"hello":  "hello",
		"'":      "",
	}
	for in, want := range tests {
		if got := LettersOnly(in); got != want {
			t.Errorf("LettersOnly(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidWord(t *testing.T) {
	tests := map[string]bool{
		"hello":  true,
		"don't":  true,
		"e-mail": true,
		"":       false,
		"h3llo":  false,
		"a b":    false,
		"'-'":    false,
		"aaaa":   false,
		"aa":     true,
		"a":      true,
		"i":      true,
		"x":      false,
	}
	for in, want := range tests {
		if got := IsValidWord(in); got != want {
			t.Errorf("IsValidWord(%q) = %v, want %v", in, got, want)
		}
	}
	if IsValidWord("caf\u00e9") {
		t.Error("letters without a key accepted")
	}
	if !IsValidWord("incomprehensibilities") || IsValidWord("antidisestablishmentarianism") {
		t.Errorf("words past %d letters should be dropped", MaxWordLetters)
	}
}

func TestSeenFilter(t *testing.T) {
	f := NewSeenFilter("The")
	if f.ShouldInclude("the") {
		t.Error("excluded word was included")
	}
	if !f.ShouldInclude("of") {
		t.Error("new word was rejected")
	}
	if f.ShouldInclude("OF") {
		t.Error("duplicate was included")
	}
}

func TestFirstLast(t *testing.T) {
	if _, _, ok := FirstLast(""); ok {
		t.Error("empty string has no ends")
	}
	first, last, ok := FirstLast("héllo")
	if !ok || first != 'h' || last != 'o' {
		t.Errorf("FirstLast = %q %q %v", first, last, ok)
	}
}

func TestDecodeSection(t *testing.T) {
	var target struct {
		Speed float64 `toml:"speed"`
		Keep  int     `toml:"keep"`
	}
	target.Keep = 7
	if err := DecodeSection(map[string]any{"speed": int64(90)}, &target); err != nil {
		t.Fatal(err)
	}
	if target.Speed != 90 || target.Keep != 7 {
		t.Errorf("DecodeSection = %+v", target)
	}
	if err := DecodeSection(map[string]any{"speed": "fast"}, &target); err == nil {
		t.Error("expected a type error")
	}
}

func TestIsValidDataDir(t *testing.T) {
	dir := t.TempDir()
	if IsValidDataDir(dir) {
		t.Error("empty dir is not a data dir")
	}
	if err := os.WriteFile(filepath.Join(dir, WordListName), []byte("the\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsValidDataDir(dir) {
		t.Error("dir with a word list is a data dir")
	}

	chunks := t.TempDir()
	if err := os.WriteFile(filepath.Join(chunks, "dict_0001.bin"), []byte{0, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsValidDataDir(chunks) || len(ListBinFiles(chunks)) != 1 {
		t.Error("dir with chunks is a data dir")
	}
	if IsValidDataDir(filepath.Join(chunks, "dict_0001.bin")) {
		t.Error("a file is not a data dir")
	}
}

func TestEnsureParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "traces.db")
	if err := EnsureParentDir(path); err != nil {
		t.Fatal(err)
	}
	if !FileExists(filepath.Dir(path)) {
		t.Error("parent dir was not created")
	}
	if err := EnsureParentDir("traces.db"); err != nil {
		t.Errorf("bare file name: %v", err)
	}
}

func TestCheckDictionaryPath(t *testing.T) {
	dir := t.TempDir()
	words := filepath.Join(dir, WordListName)

	if err := CheckDictionaryPath(words); err == nil {
		t.Error("missing file accepted")
	}
	if err := CheckDictionaryPath(dir); err == nil {
		t.Error("dir without a dictionary accepted")
	}
	if err := os.WriteFile(words, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckDictionaryPath(words); err == nil {
		t.Error("empty word list accepted")
	}
	if err := os.WriteFile(words, []byte("the\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckDictionaryPath(words); err != nil {
		t.Error(err)
	}
	if err := CheckDictionaryPath(dir); err != nil {
		t.Error(err)
	}
}

func TestSaveTOMLFileReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")
	type section struct {
		Limit int `toml:"limit"`
	}

	for _, limit := range []int{100, 7} {
		if err := SaveTOMLFile(map[string]section{"server": {Limit: limit}}, path); err != nil {
			t.Fatal(err)
		}
	}
	var got map[string]section
	if err := LoadTOMLFile(path, &got); err != nil {
		t.Fatal(err)
	}
	if got["server"].Limit != 7 {
		t.Errorf("limit = %d, want 7", got["server"].Limit)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	if !WritableDir(dir) {
		t.Fatal("fresh dir not writable")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("write test file left behind: %v", entries)
	}
}

func TestAbsPath(t *testing.T) {
	if got := AbsPath(""); got != "unknown" {
		t.Errorf("AbsPath(\"\") = %q", got)
	}
	if got := AbsPath("config.toml"); !filepath.IsAbs(got) {
		t.Errorf("AbsPath(config.toml) = %q", got)
	}
}

func TestExclusions(t *testing.T) {
	for _, w := range []string{"thou", "whilst", "streep"} {
		if !IsHardExcluded(w) || !IsExcluded(w) {
			t.Errorf("%q should be hard excluded", w)
		}
	}
	for _, w := range []string{"lol", "gonna", "didn", "hmm"} {
		if IsHardExcluded(w) || !IsExcluded(w) {
			t.Errorf("%q should be excluded past the core only", w)
		}
	}
	for _, w := range []string{"the", "hello", "coffee"} {
		if IsExcluded(w) {
			t.Errorf("%q should not be excluded", w)
		}
	}
}

func TestIsLikelyObscure(t *testing.T) {
	tests := map[string]bool{
		"cardiomegaly":    true,
		"bodacious":       true,
		"diphthong":       true,
		"keepeth":         true,
		"boosterism":      false,
		"individualism":   true,
		"hyper":           false,
		"growth":          false,
		"water":           false,
		"extraordinarily": true,
	}
	for in, want := range tests {
		if got := IsLikelyObscure(in); got != want {
			t.Errorf("IsLikelyObscure(%q) = %v, want %v", in, got, want)
		}
	}
}
