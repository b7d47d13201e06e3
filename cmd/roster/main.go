package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"jandoedu/internal/config"
	"jandoedu/internal/credentials"
	"jandoedu/internal/database"
	"jandoedu/internal/logging"
	"jandoedu/internal/models"
	"jandoedu/internal/repository"
	"jandoedu/internal/service"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	studentRepo := repository.NewStudentRepository(db)
	moduleRepo := repository.NewModuleRepository(db)

	switch os.Args[1] {
	case "add":
		runAdd(studentRepo, os.Args[2:])
	case "list":
		runList(studentRepo)
	case "seed":
		runSeed(studentRepo, moduleRepo)
	case "export":
		runExport(db, logger, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: roster <command> [flags]

Commands:
  add     -name NAME -year YEAR [-code CODE]   add a student
  list                                         list all students
  seed                                         seed demo modules and students
  export  [-out FILE]                          export everything as a workbook`)
}

func runAdd(studentRepo *repository.StudentRepository, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "student name")
	year := fs.String("year", "", "year level")
	code := fs.String("code", "", "student code (generated when empty)")
	fs.Parse(args)

	if *name == "" || *year == "" {
		fmt.Fprintln(os.Stderr, "add: -name and -year are required")
		os.Exit(1)
	}

	if *code == "" {
		generated, err := credentials.GenerateStudentCode()
		if err != nil {
			log.Fatalf("Failed to generate code: %v", err)
		}
		*code = generated
	}

	student := &models.Student{Name: *name, Code: *code, YearLevel: *year}
	if err := studentRepo.Create(student); err != nil {
		log.Fatalf("Failed to add student: %v", err)
	}

	fmt.Printf("Added %s (year %s) with code %s\n", *name, *year, *code)
}

func runList(studentRepo *repository.StudentRepository) {
	students, err := studentRepo.List()
	if err != nil {
		log.Fatalf("Failed to list students: %v", err)
	}

	if len(students) == 0 {
		fmt.Println("No students yet")
		return
	}
	for _, s := range students {
		fmt.Printf("%-22s %-14s year %-3s games %-4d score %-5d last login %s\n",
			s.Name, s.Code, s.YearLevel, s.TotalGames, s.TotalScore, s.LastLogin)
	}
}

func runSeed(studentRepo *repository.StudentRepository, moduleRepo *repository.ModuleRepository) {
	modules := []models.LearningModule{
		{
			ModuleID: "MATH-Y6-01", ModuleName: "Fractions and Decimals", Subject: "Maths",
			YearLevel: "6", Description: "Converting between fractions and decimals",
			TotalSteps: 4, VideoID: "fd-intro", GameLink: "/games/fractions.html",
			Status: models.ModuleStatusActive,
		},
		{
			ModuleID: "ENG-Y6-01", ModuleName: "Persuasive Writing", Subject: "English",
			YearLevel: "6", Description: "Structure and language of persuasive texts",
			TotalSteps: 4, VideoID: "pw-intro", GameLink: "/games/persuade.html",
			Status: models.ModuleStatusActive,
		},
		{
			ModuleID: "SCI-Y5-01", ModuleName: "Living Things", Subject: "Science",
			YearLevel: "5", Description: "Classifying living things",
			TotalSteps: 4, VideoID: "lt-intro", GameLink: "/games/living.html",
			Status: models.ModuleStatusActive,
		},
	}
	for _, m := range modules {
		m := m
		if err := moduleRepo.Create(&m); err != nil {
			fmt.Printf("Skipping module %s: %v\n", m.ModuleID, err)
			continue
		}
		fmt.Printf("Seeded module %s\n", m.ModuleID)
	}

	students := []models.Student{
		{Name: "Ava Walker", Code: "ocean-panda-41", YearLevel: "6"},
		{Name: "Liam Hughes", Code: "tiger-comet-07", YearLevel: "6"},
		{Name: "Mia Carter", Code: "lemon-gecko-88", YearLevel: "5"},
	}
	for _, s := range students {
		s := s
		if err := studentRepo.Create(&s); err != nil {
			fmt.Printf("Skipping student %s: %v\n", s.Code, err)
			continue
		}
		fmt.Printf("Seeded student %s (%s)\n", s.Name, s.Code)
	}
}

func runExport(db *database.DB, logger *zap.Logger, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "jandoedu.xlsx", "output workbook path")
	fs.Parse(args)

	exportService := service.NewExportService(
		repository.NewStudentRepository(db),
		repository.NewModuleRepository(db),
		repository.NewProgressRepository(db),
		repository.NewResultRepository(db),
		logger,
	)
	if err := exportService.ExportWorkbook(*out); err != nil {
		log.Fatalf("Failed to export workbook: %v", err)
	}
	fmt.Printf("Workbook written to %s\n", *out)
}
