package entities

// Doctor represents one entry in the static specialist catalog.
// Catalog data is immutable reference data, never mutated at runtime.
type Doctor struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Specialization  string   `json:"specialization"`
	Education       string   `json:"education"`
	ExperienceYears int      `json:"experience_years"`
	Availability    []string `json:"availability"`
}
