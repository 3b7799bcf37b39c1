package domain

// Identity is the process-wide session identity. It determines which list
// store variant is active and the namespace that scopes remote reads/writes.
type Identity struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	SubjectID       string `json:"subject_id,omitempty"`
}

// Anonymous is the identity at app start and after sign-out.
var Anonymous = Identity{}

// Equal reports whether two identities refer to the same owner namespace.
func (i Identity) Equal(other Identity) bool {
	return i.IsAuthenticated == other.IsAuthenticated && i.SubjectID == other.SubjectID
}
