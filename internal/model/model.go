package model

import "time"

type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
)

// Identity is one registered user within a role namespace. Patients and
// caregivers may share a username; they never share a record.
type Identity struct {
	Username     string
	Role         Role
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}

type Vaccine struct {
	Name  string
	Doses int
}

// Availability is one bookable unit: a caregiver open on a calendar day.
type Availability struct {
	Caregiver string
	Day       time.Time
}

type Appointment struct {
	ID        int64
	Patient   string
	Caregiver string
	Vaccine   string
	Day       time.Time
	CreatedAt time.Time
}
