package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"tdc-backend/internal/accounts"
	"tdc-backend/internal/apiclient"
	"tdc-backend/internal/composer"
	"tdc-backend/internal/config"
	"tdc-backend/internal/content"
	"tdc-backend/internal/db"
)

const demoCategory = "Demo"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Fatal("seed: ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	if cfg.Store == config.StoreMongo {
		client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Disconnect(context.Background())

		if err := db.EnsureIndexes(ctx, cols); err != nil {
			log.Fatal(err)
		}
		changed, err := accounts.NewService(accounts.NewRepository(cols.Users), nil).EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Fatalf("seed admin error for %s: %v", cfg.AdminEmail, err)
		}
		log.Printf("seed admin: %s ready (changed=%t)", cfg.AdminEmail, changed)
	} else {
		log.Printf("seed admin: STORE=%s, the API bootstraps %s itself", cfg.Store, cfg.AdminEmail)
	}

	api := apiclient.New(cfg.APIBaseURL, nil, apiclient.WithLogger(logger))
	if err := api.Login(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		if errors.Is(err, apiclient.ErrTransport) {
			log.Printf("seed demo: api at %s unreachable, skipping demo content", cfg.APIBaseURL)
			log.Println("seed completed")
			return
		}
		log.Fatalf("seed demo: login failed: %v", err)
	}

	existing, err := api.ListCourses(ctx, apiclient.CourseFilter{Category: demoCategory, Limit: 1})
	if err != nil {
		log.Fatalf("seed demo: list courses: %v", err)
	}
	if existing.Total > 0 {
		log.Println("seed demo: demo course already present")
	} else if err := seedCourse(ctx, api, logger); err != nil {
		log.Fatalf("seed demo: %s", composer.Describe(err))
	}

	if err := seedPost(ctx, api, logger); err != nil {
		log.Fatalf("seed demo: %s", composer.Describe(err))
	}

	log.Println("seed completed")
}

func seedCourse(ctx context.Context, api *apiclient.Client, logger *slog.Logger) error {
	c := composer.NewCourseComposer(api, logger)
	c.SetTitle("Backend Development with Go")
	c.SetDescription("Build and ship an HTTP service, from the first handler to production.")
	c.SetCategory(demoCategory)
	c.SetInstructor(content.Instructor{Name: "TDC Team", Title: "Backend engineers"})
	if err := c.SetLevel(content.LevelIntermediate); err != nil {
		return err
	}
	if err := c.SetPrice(0); err != nil {
		return err
	}
	if err := c.SetResources([]content.Resource{
		{Type: content.ResourceVideo, Count: 4},
		{Type: content.ResourceExercise, Count: 2},
	}); err != nil {
		return err
	}

	module := content.NewModule("Your first service")
	module.Duration = "45m"
	c.AddModule(module)

	intro := content.NewLesson("Hello, HTTP")
	intro.IsLocked = false
	intro.Duration = "10m"
	if err := c.AddLesson(0, intro); err != nil {
		return err
	}
	if err := c.AddSection(0, 0, content.NewTextSection("Every Go web service starts with a **handler**.")); err != nil {
		return err
	}
	code, err := content.NewCodeSection("http.HandleFunc(\"/\", func(w http.ResponseWriter, r *http.Request) {\n\tfmt.Fprintln(w, \"hello\")\n})", content.LangGo)
	if err != nil {
		return err
	}
	if err := c.AddSection(0, 0, code); err != nil {
		return err
	}

	saved, err := c.Submit(ctx)
	if err != nil {
		return err
	}
	log.Printf("seed demo: course %s created (version %d)", saved.ID, saved.Version)
	return nil
}

func seedPost(ctx context.Context, api *apiclient.Client, logger *slog.Logger) error {
	existing, err := api.ListPosts(ctx, "demo", "")
	if err != nil {
		return err
	}
	if existing.Total > 0 {
		log.Println("seed demo: demo post already present")
		return nil
	}

	p := composer.NewPostComposer(api, "TDC Team", logger)
	p.SetTitle("Why we write our backend in Go")
	p.AddTag("demo")
	p.AddTag("go")
	p.AddTopic("Programming")
	if err := p.AddSection(content.NewTextSection("Small binaries, fast builds and a standard library that covers HTTP.")); err != nil {
		return err
	}
	saved, err := p.Submit(ctx)
	if err != nil {
		return err
	}
	log.Printf("seed demo: post %s created (version %d)", saved.ID, saved.Version)
	return nil
}
