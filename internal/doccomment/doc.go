// Package doccomment turns a raw /** ... */ block into a types.DocComment.
//
// # Basic Usage
//
//	s := doccomment.New(logger)
//	doc := s.Parse(raw, []string{"a", "b"})
//	if doc == nil {
//	    // blank or malformed: treat the method as undocumented
//	}
//
// # Normalization
//
// Comment delimiters and the leading '*' of each line are removed and every
// whitespace run collapses to a single space. Structured fields are therefore
// single-line; DocComment.Raw keeps the block exactly as it appeared.
//
// # Tags
//
// The normalized text is split wherever a block tag begins: an '@' at the
// start of the text or after whitespace. Inline tags such as {@link Foo}
// stay in the surrounding text. Text before the first tag is the
// description.
//
//	@param name desc       -> Params
//	@return desc           -> Return
//	@throws Type reason    -> Throws
//	@exception Type reason -> Throws
//	@anything else         -> Other
//
// A @param or @throws tag without a name makes the whole comment malformed.
// Parse never returns a partially filled DocComment.
package doccomment
