// Package lang implements the slang scripting language: a small imperative
// language with lexical blocks, first-class closures, lists, objects and
// structured control flow.
//
// # Pipeline
//
// Source text passes through four stages:
//
//  1. [Tokenize] converts text into a flat [Token] sequence.
//  2. [Reduce] collapses balanced (), {}, [] and |...| pairs into group
//     [Node] values, so every later stage only sees top-level tokens.
//  3. The parser splits a node sequence at top-level semicolons into
//     statements, then parses each expression by locating the
//     loosest-binding top-level operator and recursing on both sides.
//  4. The evaluator walks the resulting [Program] against a layered
//     [Context].
//
// # Grammar
//
// Informal EBNF:
//
//	Program    → Statement (';' Statement)* ';'?
//	Statement  → 'let' Identifier '=' Expr
//	           | Reference ('=' | '+=' | '-=' | '*=' | '/=' | '%=') Expr
//	           | 'return' Expr? | 'break' Expr? | 'continue'
//	           | Expr
//	Expr       → '|' Params '|' Expr
//	           | 'if' Expr Block ('else' (Block | Expr))?
//	           | 'while' Expr Block
//	           | 'for' Identifier 'in' Expr Block
//	           | Expr BinOp Expr | UnOp Expr
//	           | Expr '(' Args ')' | Expr '[' Expr ']' | Expr '.' Identifier
//	           | '(' Expr? ')' | '[' Args ']' | '{' Fields '}' | Block
//	           | Number | String | 'true' | 'false' | Identifier
//	Block      → '{' Program '}'
//
// Binary operators, loosest first: or; and; == !=; < <= > >=; + -; * / %.
// Operators of equal precedence associate to the left. Prefix operators are
// + - not and !.
//
// # Evaluation
//
// A block evaluates to its trailing unterminated expression, or Unit when
// the block ends with a semicolon. Names defined in a block are discarded
// when it exits; assignments to outer names persist.
//
// A function call evaluates its body in a fresh context whose base layer
// binds the parameters. Names of the caller are readable, but writes to them
// are local to the call, except that a rebinding of the called function's
// own name is copied back.
//
// The only built-in function is print, which writes its arguments separated
// by spaces and followed by a newline.
//
// # Example
//
//	let fib = |n| if n < 2 { n } else { fib(n - 1) + fib(n - 2) };
//	let xs = [];
//	for i in [0, 1, 2, 3, 4, 5] { xs = xs + [fib(i)]; };
//	print("fib:", xs);
package lang
