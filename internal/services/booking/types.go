package booking

// CreateRequest carries the fields of a new booking. StudentID comes
// from the request body so an admin can book on a student's behalf; the
// guard rejects students naming anyone but themselves.
type CreateRequest struct {
	StudentID uint   `json:"student_id"`
	TutorID   uint   `json:"tutor_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM
}

// ListFilter narrows List results.
type ListFilter struct {
	Status   string `query:"status"`
	FromDate string `query:"from"`
	Sort     string `query:"sort"` // "date" for date,time ascending
}
