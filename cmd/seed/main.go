package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/config"
	"github.com/sigcr-dev/rehab-manager/backend/internal/repository"
	"github.com/sigcr-dev/rehab-manager/backend/internal/seed"
	"github.com/sigcr-dev/rehab-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operacion a ejecutar (1: insertar usuarios aleatorios, 2: insertar pacientes aleatorios, 3: insertar planes para pacientes sin plan, 4: cargar datos de demostracion)")
	flag.IntVar(&n, "n", 5, "cantidad de registros a insertar")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// cargar configuracion
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuracion", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// crear el pool de conexiones
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("no se pudo crear el pool de conexiones", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open solo crea el pool, no conecta: hay que hacer ping explicito
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("no se pudo conectar a la base de datos", "error", err)
		return
	}

	// crear repository
	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no se indico ninguna operacion")
	case 1:
		if n <= 0 {
			slog.Error("ingrese una cantidad valida de usuarios")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, "sigcr.local")
				if err != nil {
					slog.Error("no se pudo generar el usuario", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("no se pudo insertar el usuario", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("usuarios insertados", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("ingrese una cantidad valida de pacientes")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				patient := utils.GenerateRandomPatient()
				if err := repo.CreatePatient(patient); err != nil {
					slog.Error("no se pudo insertar el paciente", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("pacientes insertados", slog.Int("count", n-cnt))
		}
	case 3:
		patients, err := repo.GetAllPatients()
		if err != nil {
			slog.Error("no se pudo obtener la lista de pacientes", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, patient := range patients {
			if _, err := repo.GetActiveTreatmentPlanByPatient(patient.ID); err == nil {
				// el paciente ya tiene plan activo
				continue
			}

			plan := utils.GenerateRandomTreatmentPlan(patient)
			if err := repo.CreateTreatmentPlan(plan); err != nil {
				slog.Error("no se pudo insertar el plan", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("planes insertados", slog.Int("count", cnt))
	case 4:
		seed.SeedDemoData(repo, cfg.Seed.User.Password)
	default:
		slog.Error("la operacion indicada no es valida")
	}
}
