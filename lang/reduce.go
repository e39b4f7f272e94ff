package lang

import (
	"fmt"
	"log/slog"
)

// Reduce collapses every balanced (), {}, [] and |...| pair in tokens into a
// single group Node. Groups nest without limit. Any unmatched or mismatched
// delimiter is a syntax error.
func Reduce(tokens []Token) ([]Node, error) {
	return reduce(tokens, 0, 0)
}

var closerOf = map[TokenKind]TokenKind{
	TokenLParen:      TokenRParen,
	TokenLBrace:      TokenRBrace,
	TokenLBracket:    TokenRBracket,
	TokenVerticalBar: TokenVerticalBar,
}

var groupOf = map[TokenKind]NodeKind{
	TokenLParen:      NodeParens,
	TokenLBrace:      NodeBraces,
	TokenLBracket:    NodeBrackets,
	TokenVerticalBar: NodeClosure,
}

func reduce(tokens []Token, depth, maxDepth int) ([]Node, error) {
	if maxDepth > 0 && depth > maxDepth {
		err := ErrMaxDepthExceeded.With(slog.Int("depth", depth))
		if len(tokens) > 0 {
			return nil, err.WithPosition(tokens[0].Pos)
		}

		return nil, err
	}

	nodes := make([]Node, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch tok.Kind {
		case TokenRParen, TokenRBrace, TokenRBracket:
			return nil, ErrStrayDelimiter.WithPosition(tok.Pos).
				With(slog.String("delimiter", tok.String()))
		}

		closer, ok := closerOf[tok.Kind]
		if !ok {
			nodes = append(nodes, Node{Kind: NodeToken, Token: tok, Pos: tok.Pos})

			continue
		}

		rest := tokens[i+1:]

		end := findMatching(rest, closer)
		if end < 0 {
			want := Token{Kind: closer}

			return nil, ErrUnmatchedDelimiter.WithPosition(tok.Pos).
				Wrap(fmt.Errorf("expected %q to close %q", want, tok)).
				With(
					slog.String("open", tok.String()),
					slog.String("expected", want.String()),
				)
		}

		inner := rest[:end]
		group := Node{Kind: groupOf[tok.Kind], Pos: tok.Pos}

		if group.Kind == NodeClosure {
			params, err := identifierList(inner)
			if err != nil {
				return nil, err.WithPosition(tok.Pos)
			}

			group.Params = params
		} else {
			children, err := reduce(inner, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}

			group.Children = children
		}

		nodes = append(nodes, group)
		i += end + 1
	}

	return nodes, nil
}

// findMatching returns the index in tokens of the first closer found at
// nesting depth zero, or -1. All three bracket kinds contribute to depth, so
// interleaved pairs such as "([)]" never match.
func findMatching(tokens []Token, closer TokenKind) int {
	depth := 0

	for i, tok := range tokens {
		if depth == 0 && tok.Kind == closer {
			return i
		}

		switch tok.Kind {
		case TokenLParen, TokenLBrace, TokenLBracket:
			depth++

		case TokenRParen, TokenRBrace, TokenRBracket:
			depth--
			if depth < 0 {
				return -1
			}
		}
	}

	return -1
}

// identifierList parses a comma-separated identifier list. An empty list is
// valid.
func identifierList(tokens []Token) ([]string, *Error) {
	if len(tokens) == 0 {
		return []string{}, nil
	}

	names := make([]string, 0, len(tokens)/2+1)
	start := 0

	for i := 0; i <= len(tokens); i++ {
		if i < len(tokens) && tokens[i].Kind != TokenComma {
			continue
		}

		if i-start != 1 || tokens[start].Kind != TokenIdentifier {
			return nil, ErrIdentifierList.With(slog.Int("index", len(names)))
		}

		names = append(names, tokens[start].Text)
		start = i + 1
	}

	return names, nil
}
