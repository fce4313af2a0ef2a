package application

// DoneMsg carries the text shown in the status pane after an action.
type DoneMsg string

// ErrMsg reports a failed action.
type ErrMsg struct{ Err error }

func (e ErrMsg) Error() string { return e.Err.Error() }
