package domain

import "time"

type PatientStatus string

const (
	PatientActivo PatientStatus = "Activo"
	PatientAlta   PatientStatus = "Alta"
	PatientBaja   PatientStatus = "Baja"
)

func (s PatientStatus) IsValid() bool {
	switch s {
	case PatientActivo, PatientAlta, PatientBaja:
		return true
	}
	return false
}

type Patient struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Document  string        `json:"document"`
	BirthDate time.Time     `json:"birthDate"`
	Diagnosis string        `json:"diagnosis"`
	Room      string        `json:"room"`
	Status    PatientStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	Version   int32         `json:"-"`
}
