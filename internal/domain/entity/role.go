package entity

// Role is stored on the user row and carried in access tokens
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) IsValid() bool {
	return r == RoleDoctor || r == RolePatient
}

// Dashboard names the client-side landing view for the role
func (r Role) Dashboard() string {
	if r == RoleDoctor {
		return "doctor_dashboard"
	}
	return "patient_dashboard"
}
