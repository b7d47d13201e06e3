package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"jandoedu/internal/config"
	"jandoedu/internal/loading"
	"jandoedu/internal/logging"
	"jandoedu/internal/models"
	"jandoedu/internal/session"
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

	client := session.NewClient(cfg.GatewayURL)
	store := session.NewStore(cfg.SessionFile)
	manager := session.NewManager(client, store, cfg.LoginTimeout, logger)
	indicator := loading.New(os.Stderr)

	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		runLogin(ctx, manager, indicator, os.Args[2:])
	case "whoami":
		runWhoami(manager)
	case "logout":
		runLogout(manager)
	case "modules":
		runModules(ctx, manager, indicator)
	case "progress":
		runProgress(ctx, manager, indicator)
	case "step":
		runStep(ctx, manager, indicator, os.Args[2:])
	case "submit":
		runSubmit(ctx, manager, indicator, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: student <command> [flags]

Commands:
  login CODE                                        sign in with a student code
  whoami                                            show the signed-in student
  logout                                            sign out
  modules                                           list modules for your year level
  progress                                          show your module progress
  step    -module ID -step N [-total N] [-name S]   record a completed step
  submit  -game NAME -score N [-sheet S] [-total N] submit a game result`)
}

func currentUser(manager *session.Manager) *session.Identity {
	user := manager.CurrentUser()
	if user == nil {
		fmt.Fprintln(os.Stderr, "Not signed in. Run: student login CODE")
		os.Exit(1)
	}
	return user
}

func runLogin(ctx context.Context, manager *session.Manager, indicator *loading.Indicator, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, session.UserMessage(session.ErrEmptyCode))
		os.Exit(1)
	}

	var user *session.Identity
	err := indicator.ShowDuring(func() error {
		var err error
		user, err = manager.Authenticate(ctx, args[0])
		return err
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, session.UserMessage(err))
		os.Exit(1)
	}

	fmt.Printf("Welcome, %s!\n", user.Name)
	if rewards := user.RewardList(); len(rewards) > 0 {
		fmt.Printf("Your rewards: %v\n", rewards)
	}
}

func runWhoami(manager *session.Manager) {
	user := currentUser(manager)
	fmt.Printf("%s (code %s, year %s)\n", user.Name, user.Code, user.YearLevel)
	fmt.Printf("Games played: %d, total score: %d\n", user.TotalGames, user.TotalScore)
	if user.Rewards != "" {
		fmt.Printf("Rewards: %s\n", user.Rewards)
	}
}

func runLogout(manager *session.Manager) {
	if err := manager.Logout(); err != nil {
		log.Fatalf("Failed to log out: %v", err)
	}
	fmt.Println("Signed out")
}

func runModules(ctx context.Context, manager *session.Manager, indicator *loading.Indicator) {
	user := currentUser(manager)

	var modules []models.LearningModule
	err := indicator.ShowDuring(func() error {
		var err error
		modules, err = manager.Client().Modules(ctx, user.YearLevel)
		return err
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, session.UserMessage(err))
		os.Exit(1)
	}

	if len(modules) == 0 {
		fmt.Printf("No modules for year %s yet\n", user.YearLevel)
		return
	}
	for _, m := range modules {
		fmt.Printf("%-12s %-28s %s (%d steps)\n", m.ModuleID, m.ModuleName, m.Subject, m.TotalSteps)
	}
}

func runProgress(ctx context.Context, manager *session.Manager, indicator *loading.Indicator) {
	user := currentUser(manager)

	var records []models.ModuleProgress
	err := indicator.ShowDuring(func() error {
		var err error
		records, err = manager.Client().Progress(ctx, user.Code)
		return err
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, session.UserMessage(err))
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No progress yet. Pick a module and get started!")
		return
	}
	for _, p := range records {
		status := fmt.Sprintf("%d%%, next step %d", p.ProgressPercentage, p.CurrentStep)
		if p.IsComplete() {
			status = fmt.Sprintf("completed %s", p.CompletedDate)
		}
		fmt.Printf("%-12s steps [%s] of %d - %s\n", p.ModuleID, p.StepsCompleted, p.TotalSteps, status)
	}
}

func runStep(ctx context.Context, manager *session.Manager, indicator *loading.Indicator, args []string) {
	fs := flag.NewFlagSet("step", flag.ExitOnError)
	moduleID := fs.String("module", "", "module ID")
	step := fs.Int("step", 0, "completed step number")
	total := fs.Int("total", 4, "total steps in the module")
	name := fs.String("name", "", "step name")
	fs.Parse(args)

	if *moduleID == "" || *step < 1 {
		fmt.Fprintln(os.Stderr, "step: -module and -step are required")
		os.Exit(1)
	}

	user := currentUser(manager)

	err := indicator.ShowDuring(func() error {
		return manager.Client().UpdateProgress(ctx, session.ProgressPayload{
			StudentCode: user.Code,
			ModuleID:    *moduleID,
			StepNumber:  *step,
			TotalSteps:  *total,
			StepName:    *name,
		})
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, session.UserMessage(err))
		os.Exit(1)
	}
	fmt.Printf("Step %d of %s recorded\n", *step, *moduleID)
}

func runSubmit(ctx context.Context, manager *session.Manager, indicator *loading.Indicator, args []string) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	game := fs.String("game", "", "game name")
	sheet := fs.String("sheet", "", "sheet name (defaults to the game's sheet)")
	score := fs.Int("score", 0, "score achieved")
	total := fs.Int("total", 5, "total questions")
	reward := fs.String("reward", "", "reward token earned")
	fs.Parse(args)

	if *game == "" {
		fmt.Fprintln(os.Stderr, "submit: -game is required")
		os.Exit(1)
	}

	user := currentUser(manager)

	err := indicator.ShowDuring(func() error {
		return manager.Client().SubmitResult(ctx, session.ResultPayload{
			Code:           user.Code,
			Game:           *game,
			Sheet:          *sheet,
			Score:          *score,
			TotalQuestions: *total,
			Reward:         *reward,
		})
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, session.UserMessage(err))
		os.Exit(1)
	}
	fmt.Printf("Result submitted: %d/%d in %s\n", *score, *total, *game)
}
