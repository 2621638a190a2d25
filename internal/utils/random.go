package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonFirstNames = []string{
	"Ana", "Luis", "Maria", "Carlos", "Sofia", "Jose", "Lucia", "Jorge",
	"Elena", "Pedro", "Carmen", "Diego", "Valentina", "Andres", "Paula",
	"Miguel", "Camila", "Fernando", "Isabel", "Rodrigo",
}

var commonLastNames = []string{
	"Garcia", "Rodriguez", "Martinez", "Lopez", "Gonzalez", "Perez",
	"Sanchez", "Ramirez", "Torres", "Flores", "Rivera", "Gomez",
	"Diaz", "Vargas", "Castro", "Rojas", "Morales", "Ortiz",
}

func GenerateRandomSpanishName() string {
	return commonFirstNames[rand.Intn(len(commonFirstNames))] + " " +
		commonLastNames[rand.Intn(len(commonLastNames))]
}

var digits = "0123456789"

// GenerateUsernameFromName deriva un nombre de usuario estilo
// "ana.garcia12" a partir del nombre completo.
func GenerateUsernameFromName(fullName string) string {
	parts := strings.Fields(strings.ToLower(fullName))
	username := strings.Join(parts, ".")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var roles = []domain.Role{
	domain.RoleMedico,
	domain.RoleTerapeuta,
	domain.RoleAdministrador,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomSpanishName()
	username := GenerateUsernameFromName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        strings.ReplaceAll(username, ".", "_") + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}

var commonDiagnoses = []string{
	"ACV isquemico",
	"Lesion medular",
	"Fractura de cadera",
	"Esclerosis multiple",
	"Traumatismo craneoencefalico",
	"Amputacion transfemoral",
	"Paralisis cerebral",
}

func GenerateRandomPatient() *domain.Patient {
	birthDate := time.Date(1940+rand.Intn(60), time.Month(1+rand.Intn(12)), 1+rand.Intn(28), 0, 0, 0, 0, time.UTC)
	return &domain.Patient{
		Name:      GenerateRandomSpanishName(),
		Document:  fmt.Sprintf("%08d", rand.Intn(100000000)),
		BirthDate: birthDate,
		Diagnosis: commonDiagnoses[rand.Intn(len(commonDiagnoses))],
		Room:      fmt.Sprintf("%d%02d", 1+rand.Intn(4), 1+rand.Intn(20)),
		Status:    domain.PatientActivo,
	}
}

// GenerateRandomTreatmentPlan arma un plan activo de 4 a 12 semanas con
// entre 2 y 4 tipos de terapia.
func GenerateRandomTreatmentPlan(patient *domain.Patient) *domain.TreatmentPlan {
	startDate := time.Now().AddDate(0, 0, -rand.Intn(14))
	endDate := startDate.AddDate(0, 0, 7*(4+rand.Intn(9)))

	types := rand.Perm(len(domain.TherapyTypes))[:2+rand.Intn(3)]
	requiredHours := make(map[domain.TherapyType]int, len(types))
	for _, i := range types {
		requiredHours[domain.TherapyTypes[i]] = 1 + rand.Intn(4)
	}

	return &domain.TreatmentPlan{
		PatientID:           patient.ID,
		PatientName:         patient.Name,
		StartDate:           startDate,
		EndDate:             endDate,
		Status:              domain.PlanActivo,
		Observations:        "Plan generado para datos de prueba",
		RequiredWeeklyHours: requiredHours,
	}
}

// GenerateWeekSessions genera sesiones que cubren exactamente las horas
// requeridas del plan, repartidas de lunes a sabado en bloques de una
// hora a partir de las 08:00.
func GenerateWeekSessions(plan *domain.TreatmentPlan, therapistIDs []string, weekStart time.Time) []*domain.TherapySession {
	sessions := []*domain.TherapySession{}
	day := 0
	hour := 8
	for _, therapyType := range domain.TherapyTypes {
		required, ok := plan.RequiredWeeklyHours[therapyType]
		if !ok {
			continue
		}
		for i := 0; i < required; i++ {
			start := weekStart.AddDate(0, 0, day)
			sessions = append(sessions, &domain.TherapySession{
				PatientID:       plan.PatientID,
				TherapistID:     therapistIDs[rand.Intn(len(therapistIDs))],
				TherapyType:     therapyType,
				StartDateTime:   time.Date(start.Year(), start.Month(), start.Day(), hour, 0, 0, 0, start.Location()),
				DurationMinutes: 60,
			})
			day++
			if day > 5 {
				day = 0
				hour++
			}
		}
	}
	return sessions
}
