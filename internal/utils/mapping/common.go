package mapping

// strPtrOrNil maps an empty string to a NULL-able column value.
func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// strOrEmpty maps a NULL-able column value back to a plain string.
func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
