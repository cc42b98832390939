package station

import "fmt"

// GroupError records a group that could not get a parent station. The rest
// of the run carries on without it.
type GroupError struct {
	GroupKey string
	Err      error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("group %q: %v", e.GroupKey, e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

func NewGroupError(groupKey string, err error) *GroupError {
	return &GroupError{
		GroupKey: groupKey,
		Err:      err,
	}
}
