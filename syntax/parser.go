package syntax

import (
	"cobalt/ast"
	"cobalt/intern"
	"cobalt/report"
	"cobalt/typing"
)

// Parser is the parser for a Cobalt source file.  It performs syntax
// analysis, AST generation, and scope-aware declaration and resolution: on a
// binding occurrence it creates an Ent in the appropriate scope, and on a
// use occurrence it walks outward from the lexical scope, collecting misses
// into the file's unresolved set for the binder.  It is a recursive descent
// parser: all parsing functions assume they begin with the parser positioned
// on the first token of their production and consume every token of the
// production, leaving the parser on the next token.  Parsers are created
// once per file.
type Parser struct {
	sc  Scanner
	rep *report.Reporter
	in  *intern.Interner
	res *typing.Resolver

	file      *ast.File
	pkgScope  *ast.Scope
	fileScope *ast.Scope

	// scope is the scope currently in force.
	scope *ast.Scope

	// fun is the function expression currently being parsed; nil at the top
	// level.
	fun *ast.FunExpr

	// unresolvedList mirrors the file's unresolved set in insertion order so
	// the backtracking harness can roll back additions.
	unresolvedList []*ast.Ident

	// throwOnSyntaxError arms raising of syntax errors so the enclosing
	// backtracking harness can recover.
	throwOnSyntaxError bool

	// nextFn is the token-advance strategy; swapped for a comment-preserving
	// variant when comment mode is on.
	nextFn func()
}

// NewParser creates a new parser reading tokens from sc.  pkgScope is the
// surrounding package scope, whose outer scope must be the universe.
func NewParser(pkgScope *ast.Scope, rep *report.Reporter, in *intern.Interner, res *typing.Resolver, sc Scanner) *Parser {
	p := &Parser{
		sc:       sc,
		rep:      rep,
		in:       in,
		res:      res,
		pkgScope: pkgScope,
	}
	p.nextFn = p.skipComments
	return p
}

// SetCommentMode switches the parser (and its lexer, when the scanner is the
// in-tree lexer) into or out of comment-preserving mode.
func (p *Parser) SetCommentMode(on bool) {
	if lex, ok := p.sc.(*Lexer); ok {
		lex.SetCommentMode(on)
	}

	if on {
		p.nextFn = p.sc.Next
	} else {
		p.nextFn = p.skipComments
	}
}

// skipComments is the default advance strategy: it consumes comment tokens.
func (p *Parser) skipComments() {
	p.sc.Next()
	for p.sc.Tok() == COMMENT {
		p.sc.Next()
	}
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.
func (p *Parser) next() {
	p.nextFn()
}

// got returns true if the parser is on a token of the given kind.
func (p *Parser) got(kind int) bool {
	return p.sc.Tok() == kind
}

// gotOneOf returns whether the current token kind is one of the given kinds.
func (p *Parser) gotOneOf(kinds ...int) bool {
	for _, kind := range kinds {
		if p.sc.Tok() == kind {
			return true
		}
	}

	return false
}

// expect asserts that the parser is on a token of the given kind and moves
// past it.  On a mismatch it rejects the token and does not advance.
func (p *Parser) expect(kind int) bool {
	if p.got(kind) {
		p.next()
		return true
	}

	// EOF can stand in for a statement terminator
	if kind == SEMI && p.got(EOF) {
		return true
	}

	p.reject(kind)
	return false
}

// stmtEnd consumes a statement terminator.  A closing brace or EOF ends a
// statement without one.
func (p *Parser) stmtEnd() {
	if p.got(RBRACE) || p.got(EOF) {
		return
	}

	p.expect(SEMI)
}

// reject reports an unexpected token error on the current token.
func (p *Parser) reject(want int) {
	p.errorf(p.sc.Pos(), "unexpected %s, expected %s", TokenName(p.sc.Tok()), TokenName(want))
}

// errorf reports a syntax error, or raises it when the backtracking harness
// has armed throwing.
func (p *Parser) errorf(pos report.Pos, msg string, args ...interface{}) {
	if p.throwOnSyntaxError {
		panic(raisedSyntaxError{pos: pos})
	}

	p.rep.ErrorAt(report.KindSyntax, pos, msg, args...)
}

// raisedSyntaxError is the sentinel raised by errorf inside the backtracking
// harness.  It never escapes tryWithBacktracking.
type raisedSyntaxError struct {
	pos report.Pos
}

// -----------------------------------------------------------------------------

// stmtStart is the synchronization set of statement-starting tokens used for
// error recovery inside function bodies.
var stmtStart = map[int]struct{}{
	BREAK:    {},
	CONTINUE: {},
	FOR:      {},
	FUN:      {},
	IF:       {},
	RETURN:   {},
	TYPE:     {},
	WHILE:    {},
}

// advance consumes tokens until a member of the synchronization set is seen.
// Inside a function the set always includes statement starters so progress
// is guaranteed; at the top level it is the caller-provided follow set.
func (p *Parser) advance(follow ...int) {
	for !p.got(EOF) {
		if p.fun != nil {
			if _, ok := stmtStart[p.sc.Tok()]; ok {
				return
			}
		}

		for _, kind := range follow {
			if p.got(kind) {
				return
			}
		}

		p.next()
	}
}

// -----------------------------------------------------------------------------

// pushScope enters a new scope with the given context node.
func (p *Parser) pushScope(ctx ast.Node) *ast.Scope {
	p.scope = ast.NewScope(p.scope, ctx)
	return p.scope
}

// popScope leaves the current scope, warning for any declared name with zero
// reads.  Field scopes belonging to a struct type are exempt: their unused
// fields get no diagnostic.
func (p *Parser) popScope() {
	scope := p.scope
	p.scope = scope.Outer

	_, isStruct := scope.Context.(*ast.StructTypeExpr)

	for _, ent := range scope.Decls() {
		if ent.NReads > 0 {
			continue
		}

		switch ent.Decl.(type) {
		case *ast.Field:
			if isStruct {
				continue
			}
			p.rep.WarnAt(report.KindDeclaration, report.CodeUnusedParam, declPos(ent),
				"parameter %s declared and not used", ent.Name)
		default:
			p.rep.WarnAt(report.KindDeclaration, report.CodeUnusedVar, declPos(ent),
				"%s declared and not used", ent.Name)
		}
	}
}

func declPos(ent *ast.Ent) report.Pos {
	if ent.Decl != nil {
		return ent.Decl.Pos()
	}

	return report.NoPos
}

// declScope returns the scope new declarations should land in: the package
// scope for top-level declarations and declarations inside `init`, the
// current scope otherwise.
func (p *Parser) declScope() *ast.Scope {
	if p.scope == p.fileScope {
		return p.pkgScope
	}

	if p.fun != nil && p.fun.IsInit {
		return p.pkgScope
	}

	return p.scope
}

// declare creates an Ent for a binding occurrence of id in the given scope.
// Redeclaration within the same scope is an error, except for `_`, which is
// never declared.
func (p *Parser) declare(scope *ast.Scope, id *ast.Ident, decl ast.Node, value ast.Expr) *ast.Ent {
	if ast.IsBlank(id.Name) {
		return nil
	}

	ent := &ast.Ent{Name: id.Name, Decl: decl, Value: value}
	if prev := scope.Declare(ent); prev != ent {
		p.rep.ErrorAt(report.KindDeclaration, id.Pos(), "`%s` redeclared in this scope", id.Name)
		id.Ent = prev
		return prev
	}

	id.Ent = ent
	return ent
}

// resolveUse resolves a use occurrence of id by walking outward from its
// lexical scope.  Misses are added to the file's unresolved set.
func (p *Parser) resolveUse(id *ast.Ident) {
	if ast.IsBlank(id.Name) {
		return
	}

	if ent := id.NodeScope().Lookup(id.Name); ent != nil {
		id.Ent = ent
		ent.NReads++
		return
	}

	if _, ok := p.file.Unresolved[id]; !ok {
		p.file.Unresolved[id] = struct{}{}
		p.unresolvedList = append(p.unresolvedList, id)
	}
}

// -----------------------------------------------------------------------------

// parserCheckpoint captures parser and scanner state for backtracking.
type parserCheckpoint struct {
	scanner     Checkpoint
	scope       *ast.Scope
	fun         *ast.FunExpr
	nUnresolved int
}

// checkpoint snapshots the parser.  The scanner must support checkpointing.
func (p *Parser) checkpoint() parserCheckpoint {
	cp, ok := p.sc.(Checkpointer)
	if !ok {
		panic("syntax: scanner does not support backtracking")
	}

	return parserCheckpoint{
		scanner:     cp.Checkpoint(),
		scope:       p.scope,
		fun:         p.fun,
		nUnresolved: len(p.unresolvedList),
	}
}

// restore rewinds the parser to a checkpoint, including any unresolved
// identifiers recorded since.
func (p *Parser) restore(cp parserCheckpoint) {
	cp.scanner.Restore()
	p.scope = cp.scope
	p.fun = cp.fun

	for _, id := range p.unresolvedList[cp.nUnresolved:] {
		delete(p.file.Unresolved, id)
	}
	p.unresolvedList = p.unresolvedList[:cp.nUnresolved]
}

// tryWithBacktracking runs each alternative in order.  All but the last run
// with throwing syntax errors armed: on a raised error the parser state is
// restored and the next alternative is tried.  The last alternative runs
// without the harness so its errors surface normally.
func (p *Parser) tryWithBacktracking(alts ...func() ast.Expr) ast.Expr {
	for _, alt := range alts[:len(alts)-1] {
		cp := p.checkpoint()

		if expr, ok := p.attempt(alt); ok {
			cp.scanner.Release()
			return expr
		}

		p.restore(cp)
		cp.scanner.Release()
	}

	return alts[len(alts)-1]()
}

// attempt runs one backtracking alternative with throwing errors armed.
func (p *Parser) attempt(alt func() ast.Expr) (expr ast.Expr, ok bool) {
	prev := p.throwOnSyntaxError
	p.throwOnSyntaxError = true

	defer func() {
		p.throwOnSyntaxError = prev

		if x := recover(); x != nil {
			if _, isSyntax := x.(raisedSyntaxError); !isSyntax {
				panic(x)
			}
			ok = false
		}
	}()

	return alt(), true
}
