package lang

import (
	"log/slog"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Tokenize converts source text into a flat token sequence.
func Tokenize(s string) ([]Token, error) {
	lx := &lexer{
		input: []byte(s),
		line:  1,
		col:   1,
	}

	return lx.tokenize()
}

// lexer holds the scanner state.
type lexer struct {
	input []byte
	pos   int
	line  int
	col   int
}

var keywords = map[string]Keyword{
	"let":      KeywordLet,
	"return":   KeywordReturn,
	"break":    KeywordBreak,
	"continue": KeywordContinue,
	"if":       KeywordIf,
	"else":     KeywordElse,
	"while":    KeywordWhile,
	"for":      KeywordFor,
	"in":       KeywordIn,
}

var wordOperators = map[string]Operator{
	"and": OpAnd,
	"or":  OpOr,
	"not": OpNot,
}

var punctuation = map[rune]TokenKind{
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'[': TokenLBracket,
	']': TokenRBracket,
	'|': TokenVerticalBar,
	',': TokenComma,
	';': TokenSemicolon,
	':': TokenColon,
	'.': TokenDot,
}

func (lx *lexer) tokenize() ([]Token, error) {
	tokens := make([]Token, 0, len(lx.input)/2)

	for {
		lx.skipWhitespaceAndComments()

		if lx.eof() {
			return tokens, nil
		}

		tok, err := lx.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
	}
}

// next scans exactly one token starting at the current position.
func (lx *lexer) next() (Token, error) {
	pos := lx.position()
	r := lx.peek()

	switch {
	case r >= '0' && r <= '9':
		return lx.scanNumber(pos)

	case r == '"':
		return lx.scanString(pos)

	case isIdentifierStart(r):
		return lx.scanWord(pos), nil
	}

	if kind, ok := punctuation[r]; ok {
		lx.advance()

		return Token{Kind: kind, Text: string(r), Pos: pos}, nil
	}

	return lx.scanOperator(pos)
}

func (lx *lexer) scanNumber(pos Position) (Token, error) {
	start := lx.pos

	for isDigit(lx.peek()) {
		lx.advance()
	}

	// A dot is only part of the number when a digit follows it; otherwise it
	// is a field access on the preceding token.
	if lx.peek() == '.' && lx.pos+1 < len(lx.input) && isDigit(rune(lx.input[lx.pos+1])) {
		lx.advance()

		for isDigit(lx.peek()) {
			lx.advance()
		}
	}

	text := string(lx.input[start:lx.pos])

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, ErrInvalidNumber.WithPosition(pos).Wrap(err).
			With(slog.String("text", text))
	}

	return Token{Kind: TokenNumber, Value: Number(f), Text: text, Pos: pos}, nil
}

func (lx *lexer) scanString(pos Position) (Token, error) {
	start := lx.pos

	if err := lx.skipString('"'); err != nil {
		return Token{}, ErrUnterminatedString.WithPosition(pos)
	}

	text := string(lx.input[start:lx.pos])

	s, err := strconv.Unquote(text)
	if err != nil {
		return Token{}, ErrUnterminatedString.WithPosition(pos).Wrap(err).
			With(slog.String("text", text))
	}

	return Token{Kind: TokenString, Value: String(s), Text: text, Pos: pos}, nil
}

func (lx *lexer) scanWord(pos Position) Token {
	start := lx.pos

	for !lx.eof() && isIdentifierContinue(lx.peek()) {
		lx.advance()
	}

	word := string(lx.input[start:lx.pos])

	switch word {
	case "true", "false":
		return Token{Kind: TokenBoolean, Value: Bool(word == "true"), Text: word, Pos: pos}
	}

	if kw, ok := keywords[word]; ok {
		return Token{Kind: TokenKeyword, Keyword: kw, Text: word, Pos: pos}
	}

	if op, ok := wordOperators[word]; ok {
		return Token{Kind: TokenOperator, Operator: op, Text: word, Pos: pos}
	}

	return Token{Kind: TokenIdentifier, Text: word, Pos: pos}
}

func (lx *lexer) scanOperator(pos Position) (Token, error) {
	r := lx.peek()
	lx.advance()

	eq := lx.peek() == '='

	var op Operator

	switch r {
	case '=':
		if !eq {
			return Token{Kind: TokenAssign, Text: "=", Pos: pos}, nil
		}

		op = OpEqual

	case '!':
		if !eq {
			return Token{Kind: TokenOperator, Operator: OpNot, Text: "!", Pos: pos}, nil
		}

		op = OpNotEqual

	case '<':
		op = OpLess
		if eq {
			op = OpLessEqual
		}

	case '>':
		op = OpGreater
		if eq {
			op = OpGreaterEqual
		}

	case '+', '-', '*', '/', '%':
		op = map[rune]Operator{
			'+': OpAdd,
			'-': OpSubtract,
			'*': OpMultiply,
			'/': OpDivide,
			'%': OpModulo,
		}[r]

		if eq {
			lx.advance()

			return Token{
				Kind:     TokenOperatorAssign,
				Operator: op,
				Text:     string(r) + "=",
				Pos:      pos,
			}, nil
		}

		return Token{Kind: TokenOperator, Operator: op, Text: string(r), Pos: pos}, nil

	default:
		return Token{}, ErrInvalidCharacter.WithPosition(pos).
			With(slog.String("char", strconv.QuoteRune(r)))
	}

	if eq && (op == OpEqual || op == OpNotEqual || op == OpLessEqual || op == OpGreaterEqual) {
		lx.advance()
	}

	return Token{Kind: TokenOperator, Operator: op, Text: op.String(), Pos: pos}, nil
}

func (lx *lexer) peek() rune {
	if lx.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(lx.input[lx.pos:])

	return r
}

func (lx *lexer) peekN(n int) string {
	if lx.pos+n > len(lx.input) {
		return string(lx.input[lx.pos:])
	}

	return string(lx.input[lx.pos : lx.pos+n])
}

func (lx *lexer) advance() {
	if lx.eof() {
		return
	}

	r, size := utf8.DecodeRune(lx.input[lx.pos:])

	lx.pos += size
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
}

func (lx *lexer) eof() bool {
	return lx.pos >= len(lx.input)
}

func (lx *lexer) position() Position {
	return Position{
		Offset: lx.pos,
		Line:   lx.line,
		Column: lx.col,
	}
}

func (lx *lexer) skipWhitespace() {
	for !lx.eof() && unicode.IsSpace(lx.peek()) {
		lx.advance()
	}
}

func (lx *lexer) skipWhitespaceAndComments() {
	for {
		lx.skipWhitespace()

		if lx.eof() {
			return
		}

		switch {
		case lx.peekN(2) == "//", lx.peek() == '#':
			lx.skipLineComment()

		case lx.peekN(2) == "/*":
			lx.skipBlockComment()

		default:
			return
		}
	}
}

func (lx *lexer) skipLineComment() {
	for !lx.eof() && lx.peek() != '\n' {
		lx.advance()
	}
}

// skipBlockComment skips to the closing "*/" or to end of input.
func (lx *lexer) skipBlockComment() {
	lx.advance()
	lx.advance()

	for !lx.eof() {
		if lx.peekN(2) == "*/" {
			lx.advance()
			lx.advance()

			return
		}

		lx.advance()
	}
}

// skipString advances past a quoted string, honoring backslash escapes.
func (lx *lexer) skipString(quote rune) error {
	lx.advance()

	for !lx.eof() {
		switch lx.peek() {
		case '\\':
			lx.advance()
			lx.advance()

		case quote:
			lx.advance()

			return nil

		case '\n':
			return ErrUnterminatedString

		default:
			lx.advance()
		}
	}

	return ErrUnterminatedString
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
