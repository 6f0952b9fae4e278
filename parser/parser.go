// Package parser builds an ast.Instruction tree out of a token.Token
// sequence, matching brackets as it goes. It is the only stage in the
// pipeline that can fail.
package parser

import (
	"github.com/tapeforge/tapecc/ast"
	"github.com/tapeforge/tapecc/internal/pos"
	"github.com/tapeforge/tapecc/token"
)

// Parser holds the cursor over a fixed token sequence. It is not
// reusable across sources; build a new one per Parse call.
type Parser struct {
	tokens    []token.Token
	cur       int
	lockDepth int
}

// New builds a Parser over src's token sequence.
func New(src string) *Parser {
	return &Parser{tokens: token.Lex(src)}
}

// Parse consumes the whole token sequence and returns the top-level
// instruction sequence, or a ParsingError if brackets are misnested.
func (p *Parser) Parse() ([]ast.Instruction, error) {
	// No stop set at the top level: a closing token with nothing open to
	// match it is reported by parseUntil itself, not by us.
	body, _, _, err := p.parseUntil(nil)
	if err != nil {
		return nil, err
	}
	return body, nil
}

var leafCtor = map[token.Kind]func(pos.Span) ast.Instruction{
	token.IncPtr:  func(s pos.Span) ast.Instruction { return ast.NewIncPtr(s) },
	token.DecPtr:  func(s pos.Span) ast.Instruction { return ast.NewDecPtr(s) },
	token.IncCell: func(s pos.Span) ast.Instruction { return ast.NewIncCell(s) },
	token.DecCell: func(s pos.Span) ast.Instruction { return ast.NewDecCell(s) },
	token.Output:  func(s pos.Span) ast.Instruction { return ast.NewOutput(s) },
	token.Input:   func(s pos.Span) ast.Instruction { return ast.NewInput(s) },
	token.Wait:    func(s pos.Span) ast.Instruction { return ast.NewWait(s) },
	token.Notify:  func(s pos.Span) ast.Instruction { return ast.NewNotify(s) },
}

// parseUntil consumes tokens building a flat instruction sequence until
// either a token whose Kind is in stop is reached (returned unconsumed,
// atEOF=false) or the token stream runs out (atEOF=true, stop is the
// zero Kind and should be ignored by the caller).
func (p *Parser) parseUntil(stop map[token.Kind]bool) (body []ast.Instruction, stopKind token.Kind, atEOF bool, err error) {
	for {
		if p.cur >= len(p.tokens) {
			return body, 0, true, nil
		}
		tk := p.tokens[p.cur]

		if stop[tk.Kind] {
			return body, tk.Kind, false, nil
		}

		switch tk.Kind {
		case token.LoopStart:
			p.cur++
			inner, _, atEOF, err := p.parseUntil(map[token.Kind]bool{token.LoopEnd: true})
			if err != nil {
				return nil, 0, false, err
			}
			if atEOF {
				return nil, 0, false, malformed("unterminated [", tk.Span)
			}
			end := p.tokens[p.cur].Span
			p.cur++ // consume ]
			body = append(body, ast.NewLoop(inner, spanOf(tk.Span, end)))

		case token.ParStart:
			p.cur++
			start := tk.Span
			var branches [][]ast.Instruction
			var end pos.Span
			for {
				branch, sk, atEOF, err := p.parseUntil(map[token.Kind]bool{token.ParSep: true, token.ParEnd: true})
				if err != nil {
					return nil, 0, false, err
				}
				if atEOF {
					return nil, 0, false, malformed("unterminated {", start)
				}
				branches = append(branches, branch)
				end = p.tokens[p.cur].Span
				p.cur++ // consume the | or }
				if sk == token.ParEnd {
					break
				}
			}
			body = append(body, ast.NewParallel(branches, spanOf(start, end)))

		case token.LoopEnd, token.ParSep, token.ParEnd:
			// A closer with no matching opener active at this level,
			// and not one of our caller's expected stop tokens either.
			return nil, 0, false, malformed("unmatched "+tk.Kind.String(), tk.Span)

		case token.LockStart:
			p.cur++
			p.lockDepth++
			body = append(body, ast.NewLockAcquire(tk.Span, p.lockDepth))

		case token.LockEnd:
			p.cur++
			body = append(body, ast.NewLockRelease(tk.Span, p.lockDepth))
			p.lockDepth--

		case token.SleepTick:
			start := tk.Span
			end := tk.Span
			n := 0
			for p.cur < len(p.tokens) && p.tokens[p.cur].Kind == token.SleepTick {
				end = p.tokens[p.cur].Span
				n++
				p.cur++
			}
			body = append(body, ast.NewSleep(n, spanOf(start, end)))

		default:
			ctor, ok := leafCtor[tk.Kind]
			if !ok {
				// Unreachable: every Kind is handled above or in leafCtor.
				p.cur++
				continue
			}
			p.cur++
			body = append(body, ctor(tk.Span))
		}
	}
}

func spanOf(start, end pos.Span) pos.Span {
	return pos.Span{Start: start.Start, End: end.End}
}
