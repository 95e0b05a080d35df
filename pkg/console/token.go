package console

// TokenCapacity is the size of the token buffer including the terminator.
const TokenCapacity = 16

// TokenStatus is the result of Cursor.Extract.
type TokenStatus int

const (
	// TokenFound means a token was copied into the Token.
	TokenFound TokenStatus = iota
	// TokenEndOfLine means no more tokens remain.
	TokenEndOfLine
	// TokenTooLong means the next token exceeds the Token capacity.
	TokenTooLong
)

// String implements fmt.Stringer.
func (s TokenStatus) String() string {
	switch s {
	case TokenFound:
		return "found"
	case TokenEndOfLine:
		return "end-of-line"
	case TokenTooLong:
		return "too-long"
	}
	return "unknown"
}

// Token is a fixed-capacity buffer holding one token at a time.
type Token struct {
	buf [TokenCapacity]byte
	n   int
}

// Clear empties the token.
func (t *Token) Clear() {
	t.buf = [TokenCapacity]byte{}
	t.n = 0
}

// Len returns the length of the token.
func (t *Token) Len() int {
	return t.n
}

// Bytes returns the token, valid until the next extraction.
func (t *Token) Bytes() []byte {
	return t.buf[:t.n]
}

// String returns a copy of the token.
func (t *Token) String() string {
	return string(t.buf[:t.n])
}

func (t *Token) set(p []byte) {
	t.Clear()
	t.n = copy(t.buf[:TokenCapacity-1], p)
}

func isDelim(b byte) bool {
	return b == ' ' || b == '\t'
}

// Cursor walks a completed line yielding one token per Extract call.
type Cursor struct {
	line []byte
	pos  int
	err  error
}

// NewCursor creates a Cursor over line.
func NewCursor(line []byte) Cursor {
	return Cursor{line: line}
}

// Reset points the cursor at a new line and clears the error.
// It must be called before the content of the previous line changes.
func (c *Cursor) Reset(line []byte) {
	c.line, c.pos, c.err = line, 0, nil
}

// Err returns ErrTokenTooLong once an extraction failed.
func (c *Cursor) Err() error {
	return c.err
}

// Remaining returns the unscanned part of the line.
func (c *Cursor) Remaining() []byte {
	return c.line[c.pos:]
}

// Extract copies the next token into tok. With rescan set, scanning
// restarts at the beginning of the line, otherwise it resumes where the
// previous call stopped.
func (c *Cursor) Extract(rescan bool, tok *Token) TokenStatus {
	if rescan {
		c.pos = 0
	}
	start, end := c.next()
	if start == end {
		c.pos = end
		tok.Clear()
		return TokenEndOfLine
	}
	if end-start > TokenCapacity-1 {
		// stay in front of the offending token, the command is abandoned.
		c.pos = start
		c.err = ErrTokenTooLong
		tok.Clear()
		return TokenTooLong
	}
	tok.set(c.line[start:end])
	c.pos = end
	return TokenFound
}

// Check scans the remaining tokens without consuming them and reports
// whether all of them fit a Token. On failure Err returns ErrTokenTooLong.
func (c *Cursor) Check() bool {
	scan := *c
	for {
		start, end := scan.next()
		if start == end {
			return true
		}
		if end-start > TokenCapacity-1 {
			c.err = ErrTokenTooLong
			return false
		}
		scan.pos = end
	}
}

func (c *Cursor) next() (start, end int) {
	start = c.pos
	for start < len(c.line) && isDelim(c.line[start]) {
		start++
	}
	end = start
	for end < len(c.line) && c.line[end] != 0 && !isDelim(c.line[end]) {
		end++
	}
	return
}
