package dto

// Identity is the validated caller for one request. Built by the session
// validator, enriched with authorization flags by the gate, and discarded
// when the request ends.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	CanQueryPJe bool   `json:"can_query_pje"`
	IsAdmin     bool   `json:"is_admin"`
}

// ProviderUser is the subset of the identity provider's user payload the
// proxy cares about (Supabase GET /auth/v1/user shape).
type ProviderUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Aud   string `json:"aud"`
	Role  string `json:"role"`
}
