package highlight

import "github.com/halvorsen/ligature/internal/engine/line"

// GoHighlighter lexes Go source.
func GoHighlighter() *SimpleHighlighter {
	h := NewSimpleHighlighter("go", []string{".go"})
	h.AddMultiLine("/*", "*/", line.TokenComment, LexerStateBlockComment)
	h.AddRule(`//[^\n]*`, line.TokenComment)
	h.AddRule(`"(\\.|[^"\\])*"`, line.TokenString)
	h.AddRule("`[^`]*`", line.TokenString)
	h.AddRule(`'(\\.|[^'\\])'`, line.TokenString)
	h.AddRule(`\b0[xX][0-9a-fA-F]+\b`, line.TokenNumber)
	h.AddRule(`\b[0-9]+(\.[0-9]+)?\b`, line.TokenNumber)
	h.AddRule(`@\w+`, line.TokenDecorator)
	h.AddSubmatchRule(`\bfunc\s+(\w+)`, 1, line.TokenFunction)
	h.AddRule(`\w+(?:\s*\()`, line.TokenFunction)
	h.AddRule(`[+\-*/%=<>!&|^~]+`, line.TokenOperator)
	h.AddRule(`[{}()\[\],;.:]`, line.TokenPunctuation)
	h.AddKeywords(line.TokenKeyword,
		"break", "case", "chan", "const", "continue", "default", "defer",
		"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
		"interface", "map", "package", "range", "return", "select", "struct",
		"switch", "type", "var",
	)
	h.AddKeywords(line.TokenType_,
		"bool", "byte", "complex64", "complex128", "error", "float32",
		"float64", "int", "int8", "int16", "int32", "int64", "rune",
		"string", "uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"any",
	)
	h.AddKeywords(line.TokenVariable, "true", "false", "nil", "iota")
	return h
}

// PythonHighlighter lexes Python source.
func PythonHighlighter() *SimpleHighlighter {
	h := NewSimpleHighlighter("python", []string{".py"})
	h.AddMultiLine(`"""`, `"""`, line.TokenString, LexerStateStringDouble)
	h.AddMultiLine("'''", "'''", line.TokenString, LexerStateStringSingle)
	h.AddRule(`#[^\n]*`, line.TokenComment)
	h.AddRule(`"(\\.|[^"\\])*"`, line.TokenString)
	h.AddRule(`'(\\.|[^'\\])*'`, line.TokenString)
	h.AddRule(`\b[0-9]+(\.[0-9]+)?\b`, line.TokenNumber)
	h.AddRule(`@\w+`, line.TokenDecorator)
	h.AddSubmatchRule(`\bdef\s+(\w+)`, 1, line.TokenFunction)
	h.AddRule(`\w+(?:\s*\()`, line.TokenFunction)
	h.AddRule(`[+\-*/%=<>!&|^~]+`, line.TokenOperator)
	h.AddRule(`[{}()\[\],;.:]`, line.TokenPunctuation)
	h.AddKeywords(line.TokenKeyword,
		"and", "as", "assert", "async", "await", "break", "class",
		"continue", "def", "del", "elif", "else", "except", "finally",
		"for", "from", "global", "if", "import", "in", "is", "lambda",
		"nonlocal", "not", "or", "pass", "raise", "return", "try",
		"while", "with", "yield",
	)
	h.AddKeywords(line.TokenVariable, "True", "False", "None", "self")
	return h
}

// TypeScriptHighlighter lexes JavaScript and TypeScript source.
func TypeScriptHighlighter() *SimpleHighlighter {
	h := NewSimpleHighlighter("typescript", []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"})
	h.AddMultiLine("/*", "*/", line.TokenComment, LexerStateBlockComment)
	h.AddRule(`//[^\n]*`, line.TokenComment)
	h.AddRule(`"(\\.|[^"\\])*"`, line.TokenString)
	h.AddRule(`'(\\.|[^'\\])*'`, line.TokenString)
	h.AddRule("`(\\\\.|[^`\\\\])*`", line.TokenString)
	h.AddRule(`\b[0-9]+(\.[0-9]+)?\b`, line.TokenNumber)
	h.AddRule(`@\w+`, line.TokenDecorator)
	h.AddSubmatchRule(`\bfunction\s+(\w+)`, 1, line.TokenFunction)
	h.AddRule(`\w+(?:\s*\()`, line.TokenFunction)
	h.AddRule(`[+\-*/%=<>!&|^~]+`, line.TokenOperator)
	h.AddRule(`[{}()\[\],;.:]`, line.TokenPunctuation)
	h.AddKeywords(line.TokenKeyword,
		"async", "await", "break", "case", "catch", "class", "const",
		"continue", "debugger", "default", "delete", "do", "else", "export",
		"extends", "finally", "for", "function", "if", "import", "in",
		"instanceof", "interface", "let", "new", "of", "return", "static",
		"super", "switch", "this", "throw", "try", "typeof", "var", "void",
		"while", "with", "yield", "enum", "implements", "package", "private",
		"protected", "public",
	)
	h.AddKeywords(line.TokenType_,
		"string", "number", "boolean", "any", "unknown", "never", "void",
		"object", "symbol", "bigint",
	)
	h.AddKeywords(line.TokenVariable, "true", "false", "null", "undefined")
	return h
}

// RustHighlighter lexes Rust source.
func RustHighlighter() *SimpleHighlighter {
	h := NewSimpleHighlighter("rust", []string{".rs"})
	h.AddMultiLine("/*", "*/", line.TokenComment, LexerStateBlockComment)
	h.AddRule(`//[^\n]*`, line.TokenComment)
	h.AddRule(`"(\\.|[^"\\])*"`, line.TokenString)
	h.AddRule(`'(\\.|[^'\\])'`, line.TokenString)
	h.AddRule(`\b[0-9]+(\.[0-9]+)?(_?[iuf](8|16|32|64|128|size))?\b`, line.TokenNumber)
	h.AddRule(`#!?\[[^\]]*\]`, line.TokenDecorator)
	h.AddSubmatchRule(`\bfn\s+(\w+)`, 1, line.TokenFunction)
	h.AddRule(`\w+(?:\s*\()`, line.TokenFunction)
	h.AddRule(`[+\-*/%=<>!&|^~]+`, line.TokenOperator)
	h.AddRule(`[{}()\[\],;.:]`, line.TokenPunctuation)
	h.AddKeywords(line.TokenKeyword,
		"as", "break", "const", "continue", "crate", "dyn", "else", "enum",
		"extern", "fn", "for", "if", "impl", "in", "let", "loop", "match",
		"mod", "move", "mut", "pub", "ref", "return", "static", "struct",
		"super", "trait", "type", "unsafe", "use", "where", "while", "async",
		"await", "box",
	)
	h.AddKeywords(line.TokenType_,
		"bool", "char", "str", "String", "Vec", "Option", "Result",
		"i8", "i16", "i32", "i64", "i128", "isize",
		"u8", "u16", "u32", "u64", "u128", "usize",
		"f32", "f64", "Self",
	)
	h.AddKeywords(line.TokenVariable, "true", "false", "self", "None", "Some", "Ok", "Err")
	return h
}

// MarkdownHighlighter lexes Markdown prose, favoring structural markup
// over an identifier pass since prose has no keywords.
func MarkdownHighlighter() *SimpleHighlighter {
	h := NewSimpleHighlighter("markdown", []string{".md", ".markdown"})
	h.AddMultiLine("```", "```", line.TokenString, LexerStateBlockComment)
	h.AddRule(`^#{1,6}\s.*$`, line.TokenKeyword)
	h.AddRule(`\*\*[^*]+\*\*`, line.TokenDecorator)
	h.AddRule(`\*[^*]+\*`, line.TokenDecorator)
	h.AddRule("`[^`]+`", line.TokenString)
	h.AddRule(`\[[^\]]*\]\([^)]*\)`, line.TokenFunction)
	h.AddRule(`^>\s.*$`, line.TokenComment)
	h.AddRule(`^\s*[-*+]\s`, line.TokenPunctuation)
	return h
}
