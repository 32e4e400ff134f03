package model

// Page is the backend's paged response envelope. Number is zero-based.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// PageRequest is a one-based page as shown in the UI.
type PageRequest struct {
	Page int
	Size int
}

// Default page sizes used by the screens.
const (
	BrowsePageSize = 9
	ManagePageSize = 100
)

// BackendIndex converts the one-based UI page to the backend's zero-based index.
func (p PageRequest) BackendIndex() int {
	if p.Page < 1 {
		return 0
	}
	return p.Page - 1
}

// UIPage converts a backend zero-based page number to a one-based UI page.
func UIPage(backendNumber int) int {
	if backendNumber < 0 {
		return 1
	}
	return backendNumber + 1
}
