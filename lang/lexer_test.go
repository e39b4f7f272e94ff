package lang

import (
	"errors"
	"testing"
)

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenKind
	}{
		{
			name:  "definition",
			input: `let x = 3.5;`,
			want:  []TokenKind{TokenKeyword, TokenIdentifier, TokenAssign, TokenNumber, TokenSemicolon},
		},
		{
			name:  "compound assignment",
			input: `a += 1`,
			want:  []TokenKind{TokenIdentifier, TokenOperatorAssign, TokenNumber},
		},
		{
			name:  "groups and punctuation",
			input: `f(a, [b], {c: d}).e`,
			want: []TokenKind{
				TokenIdentifier, TokenLParen, TokenIdentifier, TokenComma,
				TokenLBracket, TokenIdentifier, TokenRBracket, TokenComma,
				TokenLBrace, TokenIdentifier, TokenColon, TokenIdentifier, TokenRBrace,
				TokenRParen, TokenDot, TokenIdentifier,
			},
		},
		{
			name:  "closure bars",
			input: `|a| a`,
			want:  []TokenKind{TokenVerticalBar, TokenIdentifier, TokenVerticalBar, TokenIdentifier},
		},
		{
			name:  "literals",
			input: `true false "s" 12`,
			want:  []TokenKind{TokenBoolean, TokenBoolean, TokenString, TokenNumber},
		},
		{
			name:  "comments are skipped",
			input: "1 // line\n# hash\n/* block */ 2",
			want:  []TokenKind{TokenNumber, TokenNumber},
		},
		{
			name:  "word operators",
			input: `not a and b or c`,
			want: []TokenKind{
				TokenOperator, TokenIdentifier, TokenOperator,
				TokenIdentifier, TokenOperator, TokenIdentifier,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("tokenize error: %v", err)
			}

			if len(tokens) != len(tt.want) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.want), len(tokens), tokens)
			}

			for i, tok := range tokens {
				if tok.Kind != tt.want[i] {
					t.Errorf("token %d: expected %s, got %s", i, tt.want[i], tok.Kind)
				}
			}
		})
	}
}

func TestTokenize_Operators(t *testing.T) {
	tokens, err := Tokenize(`== != <= >= < > ! + - * / % -=`)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	want := []Operator{
		OpEqual, OpNotEqual, OpLessEqual, OpGreaterEqual, OpLess, OpGreater,
		OpNot, OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo, OpSubtract,
	}

	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}

	for i, tok := range tokens {
		if tok.Operator != want[i] {
			t.Errorf("token %d: expected %s, got %s", i, want[i], tok.Operator)
		}
	}

	if tokens[len(tokens)-1].Kind != TokenOperatorAssign {
		t.Errorf("expected -= to be an operator assignment")
	}
}

func TestTokenize_Values(t *testing.T) {
	tokens, err := Tokenize(`"a\nb" 3.25 x.y`)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if got := tokens[0].Value.Str; got != "a\nb" {
		t.Errorf("expected unescaped string, got %q", got)
	}

	if got := tokens[1].Value.Number; got != 3.25 {
		t.Errorf("expected 3.25, got %v", got)
	}

	if tokens[3].Kind != TokenDot {
		t.Errorf("expected field access dot, got %s", tokens[3].Kind)
	}
}

func TestTokenize_Positions(t *testing.T) {
	tokens, err := Tokenize("let\n  x")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if got := tokens[1].Pos; got.Line != 2 || got.Column != 3 {
		t.Errorf("expected 2:3, got %s", got)
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
		line  int
		col   int
	}{
		{
			name:  "unterminated string",
			input: `"abc`,
			want:  ErrUnterminatedString,
			line:  1,
			col:   1,
		},
		{
			name:  "invalid character",
			input: "x\n  @",
			want:  ErrInvalidCharacter,
			line:  2,
			col:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Tokenize(tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected a syntax error, got %v", err)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *Error, got %T", err)
			}

			pos, ok := e.Position()
			if !ok || pos.Line != tt.line || pos.Column != tt.col {
				t.Errorf("expected position %d:%d, got %s", tt.line, tt.col, pos)
			}
		})
	}
}
