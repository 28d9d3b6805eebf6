package chaninfo

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrParseOverride represents a malformed line in a channel override file.
type ErrParseOverride struct {
	Filename string
	Line     int
	Text     string
}

func (e *ErrParseOverride) Error() string {
	return fmt.Sprintf("%s:%d: expected 6 integers, got %q", e.Filename, e.Line, e.Text)
}

// ErrUnknownChannelType is returned by the calibration queries for a
// channel that is neither a detector channel nor a known simulated type.
type ErrUnknownChannelType struct {
	Channel ChannelId
}

func (e *ErrUnknownChannelType) Error() string {
	return fmt.Sprintf("unknown channel type: %v", e.Channel)
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error {
	return e.Err
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error {
	return e.Err
}
