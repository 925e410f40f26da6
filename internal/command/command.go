// Package command parses moderator commands embedded in comment bodies:
//
//	<verb> [<rules>] [<restriction>] [<message...>]
//
// Parsing never fails; malformed pieces degrade to "absent".
package command

import (
	"fmt"
	"strconv"
	"strings"
)

type Verb int

const (
	VerbNone Verb = iota
	// VerbRemove removes the parent content and writes a note.
	VerbRemove
	// VerbNote only writes a note.
	VerbNote
)

func ParseVerb(token string) Verb {
	switch token {
	case ".r":
		return VerbRemove
	case ".n":
		return VerbNote
	default:
		return VerbNone
	}
}

func (v Verb) String() string {
	switch v {
	case VerbRemove:
		return "remove"
	case VerbNote:
		return "note"
	default:
		return "none"
	}
}

// RequiresRemoval is true for verbs that remove content, including the
// command comment itself.
func (v Verb) RequiresRemoval() bool {
	return v == VerbRemove || v == VerbNote
}

// Tokenize splits a comment body the way commands are written: on single spaces.
func Tokenize(body string) []string {
	return strings.Split(body, " ")
}

// Intent is what a command asks for. It is never modified after Parse.
type Intent struct {
	Rules       []int
	Restriction Restriction
	Message     string
}

// Parse reads the tokens that follow the verb.
func Parse(tokens []string) Intent {
	in := Intent{}
	rest := tokens

	if rules, ok := FindRules(rest); ok {
		in.Rules = rules
		rest = rest[1:]
	}
	if r, ok := FindRestriction(rest); ok {
		in.Restriction = r
		rest = rest[1:]
	}
	in.Message = FindMessage(rest)
	return in
}

// RulesString renders cited rules as "R1,2" or "No cited rules".
func (i Intent) RulesString() string {
	if len(i.Rules) == 0 {
		return "No cited rules"
	}
	parts := make([]string, 0, len(i.Rules))
	for _, r := range i.Rules {
		parts = append(parts, strconv.Itoa(r))
	}
	return "R" + strings.Join(parts, ",")
}

// Annotation is the note text written for the target user.
func (i Intent) Annotation() string {
	if i.Message == "" {
		return i.RulesString()
	}
	return fmt.Sprintf("%s: %s", i.RulesString(), i.Message)
}

var ruleDelimiters = []string{",", ".", ";"}

// FindRules reads a rule citation from the first token: a number, or a
// delimited list of numbers. Any non-numeric part voids the whole citation.
func FindRules(tokens []string) ([]int, bool) {
	if len(tokens) == 0 {
		return nil, false
	}
	tok := tokens[0]
	if n, ok := number(tok); ok {
		return []int{n}, true
	}
	for _, delim := range ruleDelimiters {
		if !strings.Contains(tok, delim) {
			continue
		}
		parts := strings.Split(tok, delim)
		rules := make([]int, 0, len(parts))
		for _, p := range parts {
			n, ok := number(p)
			if !ok {
				return nil, false
			}
			rules = append(rules, n)
		}
		return rules, true
	}
	return nil, false
}

// FindMessage joins what is left of the command.
func FindMessage(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, " ")
}

func number(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
