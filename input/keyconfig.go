package input

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Rune aliases for keys that can't be bare single-char TOML keys
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
	"semicolon": ';',
}

type keyFile struct {
	Keys        map[string]string `toml:"keys"`
	SpecialKeys map[string]string `toml:"special_keys"`
}

// LoadKeyConfig parses TOML keymap data into a sparse override KeyTable
// Sections: [keys] maps runes, [special_keys] maps named keys
// Returns error on unknown action names, invalid key names, or parse failure
func LoadKeyConfig(data []byte) (*KeyTable, error) {
	var raw keyFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("keymap parse: %w", err)
	}

	return KeyTableFromMaps(raw.Keys, raw.SpecialKeys)
}

// KeyTableFromMaps builds a sparse override KeyTable from rune and named-key bindings
// Values are action names; either map may be nil
func KeyTableFromMaps(runes, special map[string]string) (*KeyTable, error) {
	kt := &KeyTable{}
	if runes != nil {
		kt.Runes = make(map[rune]Action, len(runes))
		for keyStr, actionName := range runes {
			r, err := resolveRune(keyStr)
			if err != nil {
				return nil, fmt.Errorf("[keys] key %q: %w", keyStr, err)
			}
			a, err := resolveAction(actionName)
			if err != nil {
				return nil, fmt.Errorf("[keys] key %q: %w", keyStr, err)
			}
			kt.Runes[r] = a
		}
	}
	if special != nil {
		kt.Keys = make(map[Key]Action, len(special))
		for keyStr, actionName := range special {
			k, ok := KeyByName(strings.ToLower(keyStr))
			if !ok {
				return nil, fmt.Errorf("[special_keys] unknown key name: %q", keyStr)
			}
			a, err := resolveAction(actionName)
			if err != nil {
				return nil, fmt.Errorf("[special_keys] key %q: %w", keyStr, err)
			}
			kt.Keys[k] = a
		}
	}
	return kt, nil
}

// resolveRune converts a TOML key string to a rune
// Accepts single characters and named aliases
func resolveRune(s string) (rune, error) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, nil
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}
	return 0, fmt.Errorf("invalid rune key: %q (expected single character or alias)", s)
}

func resolveAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	a, ok := ActionByName(name)
	if !ok {
		return ActionNone, fmt.Errorf("unknown action: %q", name)
	}
	return a, nil
}

// MergeKeyTable returns a new KeyTable with base values overridden by non-nil override maps
// Override entries bound to "none" delete the key from the result
func MergeKeyTable(base, override *KeyTable) *KeyTable {
	result := base.Clone()
	if override == nil {
		return result
	}
	for k, v := range override.Keys {
		if v == ActionNone {
			delete(result.Keys, k)
		} else {
			result.Keys[k] = v
		}
	}
	for r, v := range override.Runes {
		if v == ActionNone {
			delete(result.Runes, r)
		} else {
			result.Runes[r] = v
		}
	}
	return result
}
