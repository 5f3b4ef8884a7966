package model

import (
	"bytes"
	"fmt"
)

// Flag is one approver's decision on an order.
type Flag int

const (
	// FlagNotApplicable is the wire null / absent value.
	FlagNotApplicable Flag = iota
	// FlagPending is an explicit false.
	FlagPending
	// FlagApproved is true.
	FlagApproved
)

func (f Flag) String() string {
	switch f {
	case FlagPending:
		return "PENDING"
	case FlagApproved:
		return "APPROVED"
	default:
		return "NOT_APPLICABLE"
	}
}

func (f Flag) Approved() bool {
	return f == FlagApproved
}

// FlagOf converts a nullable boolean into a Flag.
func FlagOf(v *bool) Flag {
	switch {
	case v == nil:
		return FlagNotApplicable
	case *v:
		return FlagApproved
	default:
		return FlagPending
	}
}

func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case FlagApproved:
		return []byte("true"), nil
	case FlagPending:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts booleans, null, the 0/1 integers some upstream
// endpoints emit for tinyint columns, and their quoted forms.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "null", "":
		*f = FlagNotApplicable
	case "true", "1", `"1"`, `"true"`:
		*f = FlagApproved
	case "false", "0", `"0"`, `"false"`:
		*f = FlagPending
	default:
		return fmt.Errorf("invalid authorization flag %s", data)
	}
	return nil
}
