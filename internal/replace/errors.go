package replace

import "fmt"

// UnsupportedFormatError is returned when a file's extension does not
// match any supported format. It is raised at the boundary, before any
// processing is attempted.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported file type: file has no extension"
	}

	return fmt.Sprintf("unsupported file type: %s", e.Ext)
}

// CorruptInputError is returned when a source file cannot be parsed in
// its expected format.
type CorruptInputError struct {
	Format Format
	Err    error
}

func (e *CorruptInputError) Error() string {
	return fmt.Sprintf("corrupt %s input: %v", e.Format, e.Err)
}

func (e *CorruptInputError) Unwrap() error {
	return e.Err
}
