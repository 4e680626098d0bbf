package i18n

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed phrases.json
var phrasesJSON []byte

// phrases maps a canonical English phrase to its renderings.
var phrases = mustLoadPhrases(phrasesJSON)

func mustLoadPhrases(data []byte) map[string]map[Lang]string {
	out := make(map[string]map[Lang]string)
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("i18n: decode phrase table: %v", err))
	}
	return out
}

type kind uint8

const (
	kindLiteral kind = iota + 1
	kindKey
)

// Message is either a literal carrying one string per language or a key
// naming a canonical English phrase looked up in the phrase table.
type Message struct {
	kind   kind
	byLang map[Lang]string
	token  string
}

// Literal builds a message from explicit per-language strings.
func Literal(byLang map[Lang]string) Message {
	copied := make(map[Lang]string, len(byLang))
	for lang, text := range byLang {
		copied[lang] = text
	}
	return Message{kind: kindLiteral, byLang: copied}
}

// Text is the common bilingual literal.
func Text(en, hi string) Message {
	return Literal(map[Lang]string{English: en, Hindi: hi})
}

// Raw renders the same string in every language.
func Raw(s string) Message {
	return Literal(map[Lang]string{English: s})
}

// Key refers to a canonical phrase.
func Key(token string) Message {
	return Message{kind: kindKey, token: token}
}

// IsZero reports whether the message was never initialised.
func (m Message) IsZero() bool {
	return m.kind == 0
}

// Resolve renders msg for lang.
func Resolve(msg Message, lang Lang) string {
	lang = Normalize(lang)
	switch msg.kind {
	case kindLiteral:
		if text, ok := msg.byLang[lang]; ok && text != "" {
			return text
		}
		return msg.byLang[English]
	case kindKey:
		return lookup(msg.token, lang)
	default:
		return ""
	}
}

// Translate resolves a canonical phrase.
func Translate(token string, lang Lang) string {
	return Resolve(Key(token), lang)
}

func lookup(token string, lang Lang) string {
	if lang == English {
		return token
	}
	if entry, ok := phrases[token]; ok {
		if text := entry[lang]; text != "" {
			return text
		}
	}
	return token
}

// Join renders each part per language and concatenates them with sep.
func Join(sep string, parts ...Message) Message {
	byLang := make(map[Lang]string, len(Supported))
	for _, lang := range Supported {
		rendered := make([]string, 0, len(parts))
		for _, part := range parts {
			if part.IsZero() {
				continue
			}
			rendered = append(rendered, Resolve(part, lang))
		}
		byLang[lang] = strings.Join(rendered, sep)
	}
	return Literal(byLang)
}

// Concat is Join without a separator.
func Concat(parts ...Message) Message {
	return Join("", parts...)
}
