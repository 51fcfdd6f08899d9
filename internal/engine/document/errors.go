package document

import "errors"

// Sentinel errors returned by Document operations.
var (
	ErrEncodingInvalid = errors.New("file is not valid utf-8")
	ErrInvalidLineIndex = errors.New("invalid line index")
	ErrFileTooLarge     = errors.New("file exceeds big-file warning threshold")
)
