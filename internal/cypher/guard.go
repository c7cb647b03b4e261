// Package cypher checks untrusted Cypher text before it reaches the graph store.
package cypher

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrRejected is matched by every guard rejection.
	ErrRejected = errors.New("query rejected")

	ErrEmpty               = fmt.Errorf("%w: empty query", ErrRejected)
	ErrMultipleStatements  = fmt.Errorf("%w: multiple statements not allowed", ErrRejected)
	ErrWriteClause         = fmt.Errorf("%w: write clause not allowed", ErrRejected)
	ErrProcedureNotAllowed = fmt.Errorf("%w: procedure not allowed", ErrRejected)
	ErrUnsupportedStart    = fmt.Errorf("%w: query must start with a read clause", ErrRejected)
	ErrUnterminated        = fmt.Errorf("%w: unterminated string, identifier or comment", ErrRejected)
)

// writeKeywords are clauses that mutate data, schema or security state.
var writeKeywords = map[string]bool{
	"CREATE":    true,
	"MERGE":     true,
	"DELETE":    true,
	"DETACH":    true,
	"SET":       true,
	"REMOVE":    true,
	"DROP":      true,
	"FOREACH":   true,
	"LOAD":      true,
	"ALTER":     true,
	"RENAME":    true,
	"GRANT":     true,
	"DENY":      true,
	"REVOKE":    true,
	"TERMINATE": true,
}

var startKeywords = map[string]bool{
	"MATCH":    true,
	"OPTIONAL": true,
	"WITH":     true,
	"UNWIND":   true,
	"RETURN":   true,
	"CALL":     true,
	"SHOW":     true,
	"USE":      true,
	"EXPLAIN":  true,
	"PROFILE":  true,
}

// allowedProcedures are the introspection procedures a read query may CALL.
var allowedProcedures = map[string]bool{
	"db.labels":                    true,
	"db.relationshiptypes":         true,
	"db.propertykeys":              true,
	"db.schema.visualization":      true,
	"db.schema.nodetypeproperties": true,
	"db.schema.reltypeproperties":  true,
	"dbms.components":              true,
}

// ValidateReadOnly normalizes q and rejects anything that is not a single
// read-only statement. The normalized query is returned on success.
//
// Checks, in order:
// 1. Strip markdown code fences, surrounding whitespace and one trailing semicolon
// 2. Tokenize outside string literals, backtick identifiers and comments
// 3. Reject remaining semicolons, a non-read first clause, write keywords and
//    CALLs to procedures outside the introspection allow-list
func ValidateReadOnly(q string) (string, error) {
	normalized := Normalize(q)
	if normalized == "" {
		return "", ErrEmpty
	}

	tokens, err := tokenize(normalized)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return "", ErrEmpty
	}

	if tokens[0].kind != tokenWord || !startKeywords[strings.ToUpper(tokens[0].text)] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedStart, tokens[0].text)
	}

	for i, tok := range tokens {
		if tok.kind == tokenPunct && tok.text == ";" {
			return "", ErrMultipleStatements
		}
		if tok.kind != tokenWord || !isKeywordPosition(tokens, i) {
			continue
		}
		kw := strings.ToUpper(tok.text)
		if writeKeywords[kw] {
			return "", fmt.Errorf("%w: %s", ErrWriteClause, kw)
		}
		if kw == "CALL" {
			if err := checkCall(tokens, i); err != nil {
				return "", err
			}
		}
	}
	return normalized, nil
}

// Normalize strips markdown fences, surrounding whitespace and a trailing semicolon.
func Normalize(q string) string {
	q = strings.TrimSpace(q)
	if strings.HasPrefix(q, "```") {
		q = strings.TrimPrefix(q, "```")
		// Drop a language tag such as ```cypher.
		if nl := strings.IndexByte(q, '\n'); nl >= 0 && !strings.ContainsAny(q[:nl], " ({") {
			q = q[nl+1:]
		}
		q = strings.TrimSuffix(strings.TrimSpace(q), "```")
	}
	q = strings.TrimRight(q, " \t\n\r")
	if strings.HasSuffix(q, ";") {
		q = strings.TrimSuffix(q, ";")
		q = strings.TrimRight(q, " \t\n\r")
	}
	return strings.TrimSpace(q)
}

// isKeywordPosition reports whether the word at i can be a clause keyword.
// Property keys (n.set), labels and relationship types (:Merge), parameters
// ($create) and map keys ({delete: 1}) cannot.
func isKeywordPosition(tokens []token, i int) bool {
	if i > 0 && tokens[i-1].kind == tokenPunct {
		switch tokens[i-1].text {
		case ".", ":", "$":
			return false
		}
	}
	if i+1 < len(tokens) && tokens[i+1].kind == tokenPunct && tokens[i+1].text == ":" {
		return false
	}
	return true
}

func checkCall(tokens []token, i int) error {
	j := i + 1
	if j < len(tokens) && tokens[j].kind == tokenPunct && tokens[j].text == "{" {
		// Subquery; its body is checked like the rest of the query.
		return nil
	}
	var parts []string
	for j < len(tokens) && (tokens[j].kind == tokenWord || tokens[j].kind == tokenQuoted) {
		parts = append(parts, tokens[j].text)
		if j+2 < len(tokens) && tokens[j+1].kind == tokenPunct && tokens[j+1].text == "." {
			j += 2
			continue
		}
		break
	}
	proc := strings.Join(parts, ".")
	if !allowedProcedures[strings.ToLower(proc)] {
		return fmt.Errorf("%w: %s", ErrProcedureNotAllowed, proc)
	}
	return nil
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenPunct
	tokenString
	tokenQuoted
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits q into words, single punctuation characters, string literals
// and backtick-quoted identifiers. Comments and whitespace are dropped.
func tokenize(q string) ([]token, error) {
	runes := []rune(q)
	var tokens []token
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			j := i + 2
			for j+1 < len(runes) && !(runes[j] == '*' && runes[j+1] == '/') {
				j++
			}
			if j+1 >= len(runes) {
				return nil, ErrUnterminated
			}
			i = j + 2
		case r == '\'' || r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != r {
				if runes[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(runes) {
				return nil, ErrUnterminated
			}
			tokens = append(tokens, token{kind: tokenString, text: string(runes[i+1 : j])})
			i = j + 1
		case r == '`':
			var b strings.Builder
			j := i + 1
			for {
				if j >= len(runes) {
					return nil, ErrUnterminated
				}
				if runes[j] == '`' {
					// A doubled backtick is an escaped backtick.
					if j+1 < len(runes) && runes[j+1] == '`' {
						b.WriteRune('`')
						j += 2
						continue
					}
					break
				}
				b.WriteRune(runes[j])
				j++
			}
			tokens = append(tokens, token{kind: tokenQuoted, text: b.String()})
			i = j + 1
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			j := i
			for j < len(runes) && (runes[j] == '_' || unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
				j++
			}
			tokens = append(tokens, token{kind: tokenWord, text: string(runes[i:j])})
			i = j
		default:
			tokens = append(tokens, token{kind: tokenPunct, text: string(r)})
			i++
		}
	}
	return tokens, nil
}
