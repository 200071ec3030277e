package types

// DocComment is the structured form of a /** ... */ block. Structured
// fields are single-line; Raw keeps the original formatting.
type DocComment struct {
	Description string
	Params      []ParamTag
	Return      string
	HasReturn   bool
	Throws      []ThrowsTag
	Other       []OtherTag
	Raw         string
}

// ParamTag is one @param entry
type ParamTag struct {
	Name        string
	Description string
}

// ThrowsTag is one @throws or @exception entry
type ThrowsTag struct {
	Type        string
	Description string
}

// OtherTag is any tag without a dedicated field, such as @since or @see
type OtherTag struct {
	Name    string
	Content string
}

// Param returns the description for a documented parameter
func (d *DocComment) Param(name string) (string, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p.Description, true
		}
	}
	return "", false
}

// Documents reports whether the comment has a @param for name
func (d *DocComment) Documents(name string) bool {
	_, ok := d.Param(name)
	return ok
}
