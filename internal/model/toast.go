package model

// Toast kinds
const (
	ToastLoading = "loading"
	ToastSuccess = "success"
	ToastError   = "error"
)

// Toast is a short user-visible notification delivered to browser pages.
type Toast struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
	Family  Family `json:"family,omitempty"`
	OrderID int64  `json:"order_id,omitempty"`

	// Role and UserID narrow the audience; empty means everyone.
	Role   string `json:"-"`
	UserID string `json:"-"`
}
