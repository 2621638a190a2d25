package domain

import "fmt"

// TherapyType es un tipo cerrado: los valores se validan una sola vez
// en el borde del sistema (handlers y seed) y el resto del codigo puede
// confiar en ellos.
type TherapyType string

const (
	Fisioterapia        TherapyType = "Fisioterapia"
	TerapiaOcupacional  TherapyType = "Terapia Ocupacional"
	Psicologia          TherapyType = "Psicologia"
	Fonoaudiologia      TherapyType = "Fonoaudiologia"
	TerapiaRespiratoria TherapyType = "Terapia Respiratoria"
	Hidroterapia        TherapyType = "Hidroterapia"
)

var TherapyTypes = []TherapyType{
	Fisioterapia,
	TerapiaOcupacional,
	Psicologia,
	Fonoaudiologia,
	TerapiaRespiratoria,
	Hidroterapia,
}

func (t TherapyType) IsValid() bool {
	for _, known := range TherapyTypes {
		if t == known {
			return true
		}
	}
	return false
}

func ParseTherapyType(s string) (TherapyType, error) {
	t := TherapyType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("tipo de terapia desconocido: %q", s)
	}
	return t, nil
}
