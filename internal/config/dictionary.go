package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Built-in dictionary names.
const (
	DictGeneral = "general"
	DictAlnum   = "alnum"
)

const (
	upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower  = "abcdefghijklmnopqrstuvwxyz"
	digits = "0123456789"
	punct  = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// BuiltinDictionary returns one of the compiled-in character lists. Letters
// come first so they win exact ties against look-alike digits.
func BuiltinDictionary(name string) ([]string, error) {
	switch name {
	case DictGeneral:
		return splitChars(upper + lower + digits + punct), nil
	case DictAlnum:
		return splitChars(upper + lower + digits), nil
	default:
		return nil, fmt.Errorf("unknown built-in dictionary %q", name)
	}
}

// LoadDictionary reads a character list with one symbol per line. Blank lines
// and repeated symbols are skipped; order is preserved.
func LoadDictionary(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		sym := strings.TrimRight(sc.Text(), "\r")
		if sym == "" || strings.TrimSpace(sym) == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("dictionary %s is empty", path)
	}
	return out, nil
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
