package parser

// cursor walks code tokens, stepping over comments
type cursor struct {
	toks []token
	pos  int
}

func (c *cursor) skipComments() {
	for c.pos < len(c.toks) && c.toks[c.pos].isComment() {
		c.pos++
	}
}

// peek returns the current code token, or a tokEOF token at end of input
func (c *cursor) peek() token {
	c.skipComments()
	if c.pos >= len(c.toks) {
		return token{kind: tokEOF}
	}
	return c.toks[c.pos]
}

// peekAt returns the code token n positions after the current one
func (c *cursor) peekAt(n int) token {
	c.skipComments()
	j := c.pos
	for j < len(c.toks) {
		if !c.toks[j].isComment() {
			if n == 0 {
				return c.toks[j]
			}
			n--
		}
		j++
	}
	return token{kind: tokEOF}
}

func (c *cursor) advance() token {
	t := c.peek()
	if c.pos < len(c.toks) {
		c.pos++
	}
	return t
}

// balanced consumes an open/close delimited group and returns the code
// tokens inside it. Hitting '{', ';' or end of input before the group
// closes is a failure.
func (c *cursor) balanced(open, close string) ([]token, bool) {
	if !c.peek().isPunct(open) {
		return nil, false
	}
	c.advance()

	var inner []token
	depth := 1
	for {
		t := c.peek()
		switch {
		case t.kind == tokEOF:
			return nil, false
		case t.isPunct(open):
			depth++
		case t.isPunct(close):
			depth--
			if depth == 0 {
				c.advance()
				return inner, true
			}
		case open != "(" && (t.isPunct("{") || t.isPunct(";") || t.isPunct("(")):
			return nil, false
		case t.isPunct("{") || t.isPunct(";"):
			return nil, false
		}
		inner = append(inner, t)
		c.advance()
	}
}

// skipAnnotation consumes @Name, @a.b.Name or @Name(...)
func (c *cursor) skipAnnotation() bool {
	c.advance()
	if c.peek().kind != tokIdent {
		return false
	}
	c.advance()
	for c.peek().isPunct(".") && c.peekAt(1).kind == tokIdent {
		c.advance()
		c.advance()
	}
	if c.peek().isPunct("(") {
		depth := 0
		for {
			t := c.advance()
			switch {
			case t.kind == tokEOF:
				return false
			case t.isPunct("("):
				depth++
			case t.isPunct(")"):
				depth--
				if depth == 0 {
					return true
				}
			}
		}
	}
	return true
}

// typeRef consumes a type reference such as java.util.Map<K, V>[] and
// returns its canonical text.
func (c *cursor) typeRef() (string, bool) {
	var consumed []token

	for {
		t := c.peek()
		if t.kind != tokIdent || reserved[t.text] {
			return "", false
		}
		consumed = append(consumed, c.advance())

		if c.peek().isPunct("<") {
			inner, ok := c.balanced("<", ">")
			if !ok {
				return "", false
			}
			consumed = append(consumed, token{kind: tokPunct, text: "<"})
			consumed = append(consumed, inner...)
			consumed = append(consumed, token{kind: tokPunct, text: ">"})
		}

		if c.peek().isPunct(".") && c.peekAt(1).kind == tokIdent {
			consumed = append(consumed, c.advance())
			continue
		}
		break
	}

	for c.peek().isPunct("[") && c.peekAt(1).isPunct("]") {
		consumed = append(consumed, c.advance(), c.advance())
	}

	return joinTokens(consumed), true
}

// throwsList consumes the types after 'throws' up to the terminator
func (c *cursor) throwsList() ([]string, bool) {
	var list []string
	var cur []token
	depth := 0
	for {
		t := c.peek()
		switch {
		case t.kind == tokEOF:
			return nil, false
		case depth == 0 && (t.isPunct("{") || t.isPunct(";")):
			if len(cur) == 0 {
				return nil, false
			}
			return append(list, joinTokens(cur)), true
		case depth == 0 && t.isPunct(","):
			if len(cur) == 0 {
				return nil, false
			}
			list = append(list, joinTokens(cur))
			cur = nil
			c.advance()
			continue
		case t.isPunct("<"):
			depth++
		case t.isPunct(">"):
			depth--
		case t.kind != tokIdent && !t.isPunct("."):
			return nil, false
		}
		cur = append(cur, c.advance())
	}
}
