package entities

// Principal is the authenticated user on whose behalf the workflow runs
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
