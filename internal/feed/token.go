package feed

import "sync/atomic"

// Tokens issues cancellation tokens. Issuing a token invalidates every earlier one.
type Tokens struct {
	current atomic.Uint64
}

// Token marks one session generation. The zero Token is never valid.
type Token struct {
	gen uint64
	src *Tokens
}

// Issue returns a fresh token and invalidates all previous ones.
func (t *Tokens) Issue() Token {
	return Token{gen: t.current.Add(1), src: t}
}

// Invalidate bumps the generation so no outstanding token remains valid.
func (t *Tokens) Invalidate() {
	t.current.Add(1)
}

// Valid reports whether the token is still the current generation.
func (tok Token) Valid() bool {
	return tok.src != nil && tok.src.current.Load() == tok.gen
}

// Revoke invalidates the token if it is still current; newer tokens are left alone.
func (tok Token) Revoke() {
	if tok.src == nil {
		return
	}
	tok.src.current.CompareAndSwap(tok.gen, tok.gen+1)
}

// Generation exposes the token's sequence number for logging.
func (tok Token) Generation() uint64 {
	return tok.gen
}
