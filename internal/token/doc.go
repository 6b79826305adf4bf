// Package token defines lexical token kinds and trivia for the C# subset
// understood by the codefix host front end.
// Invariants:
//   - Token.Text is a slice of the original source (no copies), except for
//     identifiers which are NFC-normalised by the lexer.
//   - Token.Span covers Text exactly; trivia spans never overlap the token.
//   - Contextual keywords (async, await, var, get, set, nameof, when) are
//     identifiers. The parser recognises them by text.
//   - Preprocessor lines (#if, #pragma, ...) are TriviaDirective trivia and
//     never appear in the main token stream.
package token
