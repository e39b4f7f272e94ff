package lang

import (
	"strconv"
)

// Position represents a location in the source text.
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based, in runes)
}

// String returns the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// TokenKind identifies the lexical category of a Token.
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenString
	TokenBoolean
	TokenIdentifier
	TokenKeyword
	TokenOperator
	TokenAssign
	TokenOperatorAssign
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenVerticalBar
	TokenComma
	TokenSemicolon
	TokenColon
	TokenDot
)

var tokenKindNames = [...]string{
	TokenNumber:         "Number",
	TokenString:         "String",
	TokenBoolean:        "Boolean",
	TokenIdentifier:     "Identifier",
	TokenKeyword:        "Keyword",
	TokenOperator:       "Operator",
	TokenAssign:         "Assign",
	TokenOperatorAssign: "OperatorAssign",
	TokenLParen:         "LParen",
	TokenRParen:         "RParen",
	TokenLBrace:         "LBrace",
	TokenRBrace:         "RBrace",
	TokenLBracket:       "LBracket",
	TokenRBracket:       "RBracket",
	TokenVerticalBar:    "VerticalBar",
	TokenComma:          "Comma",
	TokenSemicolon:      "Semicolon",
	TokenColon:          "Colon",
	TokenDot:            "Dot",
}

// String returns the name of the token kind.
func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "Unknown"
	}

	return tokenKindNames[k]
}

// Keyword is a reserved word of the language.
type Keyword string

const (
	KeywordLet      Keyword = "let"
	KeywordReturn   Keyword = "return"
	KeywordBreak    Keyword = "break"
	KeywordContinue Keyword = "continue"
	KeywordIf       Keyword = "if"
	KeywordElse     Keyword = "else"
	KeywordWhile    Keyword = "while"
	KeywordFor      Keyword = "for"
	KeywordIn       Keyword = "in"
)

// Keywords lists every reserved word, including the word-form literals and
// operators. The REPL offers these as completion candidates.
var Keywords = []string{
	"let", "return", "break", "continue",
	"if", "else", "while", "for", "in",
	"true", "false", "and", "or", "not",
}

// Token is a single lexical unit. Tokens are immutable once produced.
type Token struct {
	Value    Value    // Literal value for Number, String and Boolean
	Text     string   // Identifier name or source spelling
	Keyword  Keyword  // Set for TokenKeyword
	Operator Operator // Set for TokenOperator and TokenOperatorAssign
	Pos      Position
	Kind     TokenKind
}

// String returns the source spelling of the token.
func (t Token) String() string {
	switch t.Kind {
	case TokenNumber, TokenString, TokenBoolean:
		return t.Value.Source()

	case TokenKeyword:
		return string(t.Keyword)

	case TokenOperator:
		return t.Operator.String()

	case TokenOperatorAssign:
		return t.Operator.String() + "="

	case TokenAssign:
		return "="

	case TokenLParen:
		return "("

	case TokenRParen:
		return ")"

	case TokenLBrace:
		return "{"

	case TokenRBrace:
		return "}"

	case TokenLBracket:
		return "["

	case TokenRBracket:
		return "]"

	case TokenVerticalBar:
		return "|"

	case TokenComma:
		return ","

	case TokenSemicolon:
		return ";"

	case TokenColon:
		return ":"

	case TokenDot:
		return "."

	default:
		return t.Text
	}
}

// isLiteral reports whether the token carries a literal value.
func (t Token) isLiteral() bool {
	switch t.Kind {
	case TokenNumber, TokenString, TokenBoolean:
		return true

	default:
		return false
	}
}
