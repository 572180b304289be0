package catalog

import (
	"strings"

	"github.com/medreportai/companion/internal/domain/entities"
)

// doctors is the static specialist catalog. Order matters: suggestion
// picks the first matching entry.
var doctors = []entities.Doctor{
	{ID: 1, Name: "Dr. Sarah Johnson", Specialization: "Cardiologist", Education: "MD - Cardiology, MBBS", ExperienceYears: 15, Availability: []string{"Mon - Fri", "9:00 AM - 5:00 PM"}},
	{ID: 2, Name: "Dr. Michael Chen", Specialization: "Neurologist", Education: "MD - Neurology, MBBS", ExperienceYears: 12, Availability: []string{"Mon - Sat", "10:00 AM - 6:00 PM"}},
	{ID: 3, Name: "Dr. Emily Williams", Specialization: "Pediatrician", Education: "MD - Pediatrics, MBBS", ExperienceYears: 10, Availability: []string{"Tue - Sat", "8:00 AM - 4:00 PM"}},
	{ID: 4, Name: "Dr. James Anderson", Specialization: "Orthopedic Surgeon", Education: "MD - Orthopedics, MBBS", ExperienceYears: 18, Availability: []string{"Mon - Fri", "8:00 AM - 4:00 PM"}},
	{ID: 5, Name: "Dr. Maria Garcia", Specialization: "Dermatologist", Education: "MD - Dermatology, MBBS", ExperienceYears: 14, Availability: []string{"Mon - Sat", "9:00 AM - 5:00 PM"}},
	{ID: 6, Name: "Dr. David Kim", Specialization: "Psychiatrist", Education: "MD - Psychiatry, MBBS", ExperienceYears: 16, Availability: []string{"Mon - Fri", "10:00 AM - 6:00 PM"}},
	{ID: 7, Name: "Dr. Lisa Thompson", Specialization: "Gynecologist", Education: "MD - Gynecology, MBBS", ExperienceYears: 13, Availability: []string{"Mon - Sat", "9:00 AM - 5:00 PM"}},
	{ID: 8, Name: "Dr. Robert Wilson", Specialization: "ENT Specialist", Education: "MD - Otolaryngology, MBBS", ExperienceYears: 11, Availability: []string{"Tue - Sat", "8:00 AM - 4:00 PM"}},
	{ID: 9, Name: "Dr. Jennifer Lee", Specialization: "Ophthalmologist", Education: "MD - Ophthalmology, MBBS", ExperienceYears: 15, Availability: []string{"Mon - Fri", "9:00 AM - 5:00 PM"}},
	{ID: 10, Name: "Dr. Thomas Brown", Specialization: "Dentist", Education: "DDS, BDS", ExperienceYears: 12, Availability: []string{"Mon - Sat", "10:00 AM - 6:00 PM"}},
	{ID: 11, Name: "Dr. Patricia Martinez", Specialization: "Endocrinologist", Education: "MD - Endocrinology, MBBS", ExperienceYears: 17, Availability: []string{"Mon - Fri", "8:00 AM - 4:00 PM"}},
	{ID: 12, Name: "Dr. Kevin Taylor", Specialization: "Pulmonologist", Education: "MD - Pulmonology, MBBS", ExperienceYears: 14, Availability: []string{"Mon - Sat", "9:00 AM - 5:00 PM"}},
	{ID: 13, Name: "Dr. Amanda White", Specialization: "Rheumatologist", Education: "MD - Rheumatology, MBBS", ExperienceYears: 13, Availability: []string{"Tue - Sat", "8:00 AM - 4:00 PM"}},
	{ID: 14, Name: "Dr. Christopher Davis", Specialization: "Urologist", Education: "MD - Urology, MBBS", ExperienceYears: 16, Availability: []string{"Mon - Fri", "9:00 AM - 5:00 PM"}},
	{ID: 15, Name: "Dr. Michelle Rodriguez", Specialization: "Nutritionist", Education: "PhD - Nutrition Science", ExperienceYears: 10, Availability: []string{"Mon - Sat", "10:00 AM - 6:00 PM"}},
	{ID: 16, Name: "Dr. Steven Clark", Specialization: "Oncologist", Education: "MD - Oncology, MBBS", ExperienceYears: 19, Availability: []string{"Mon - Fri", "8:00 AM - 4:00 PM"}},
	{ID: 17, Name: "Dr. Rachel Green", Specialization: "Allergist", Education: "MD - Allergy & Immunology, MBBS", ExperienceYears: 12, Availability: []string{"Mon - Sat", "9:00 AM - 5:00 PM"}},
	{ID: 18, Name: "Dr. Daniel Lewis", Specialization: "Gastroenterologist", Education: "MD - Gastroenterology, MBBS", ExperienceYears: 15, Availability: []string{"Tue - Sat", "8:00 AM - 4:00 PM"}},
	{ID: 19, Name: "Dr. Jessica Turner", Specialization: "Physical Therapist", Education: "DPT, PT", ExperienceYears: 11, Availability: []string{"Mon - Fri", "9:00 AM - 5:00 PM"}},
	{ID: 20, Name: "Dr. Andrew Moore", Specialization: "Nephrologist", Education: "MD - Nephrology, MBBS", ExperienceYears: 14, Availability: []string{"Mon - Sat", "10:00 AM - 6:00 PM"}},
}

// All returns the full catalog in stable order
func All() []entities.Doctor {
	out := make([]entities.Doctor, len(doctors))
	copy(out, doctors)
	return out
}

// ByID returns the doctor with the given id
func ByID(id int) (entities.Doctor, bool) {
	for _, d := range doctors {
		if d.ID == id {
			return d, true
		}
	}
	return entities.Doctor{}, false
}

// Filter returns doctors whose name or specialization contains the
// query, case-insensitively. An empty query returns the full catalog.
func Filter(query string) []entities.Doctor {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return All()
	}
	var out []entities.Doctor
	for _, d := range doctors {
		if strings.Contains(strings.ToLower(d.Name), query) ||
			strings.Contains(strings.ToLower(d.Specialization), query) {
			out = append(out, d)
		}
	}
	return out
}

// FirstBySpecialization returns the first doctor in catalog order with
// the given specialization
func FirstBySpecialization(specialization string) (entities.Doctor, bool) {
	for _, d := range doctors {
		if d.Specialization == specialization {
			return d, true
		}
	}
	return entities.Doctor{}, false
}

// Size returns the catalog length
func Size() int {
	return len(doctors)
}

// At returns the doctor at a catalog index
func At(i int) entities.Doctor {
	return doctors[i]
}
