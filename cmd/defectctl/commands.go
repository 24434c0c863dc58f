package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/defectflow/defectflow-go/pkg/client"
)

func registerCommands(r *Registry) {
	r.Register(&Command{
		Name:        "login",
		Description: "Authenticate and persist the session token",
		Usage:       "defectctl login -u <username> -p <password>",
		Run:         runLogin,
	})
	r.Register(&Command{
		Name:        "logout",
		Description: "Discard the persisted session token",
		Usage:       "defectctl logout",
		Run:         runLogout,
	})
	r.Register(&Command{
		Name:        "whoami",
		Description: "Show the current authenticated user",
		Usage:       "defectctl whoami",
		Run:         runWhoami,
	})
	r.Register(&Command{
		Name:        "register",
		Description: "Create a new account (role is always observer)",
		Usage:       "defectctl register -u <username> -e <email> -p <password>",
		Run:         runRegister,
	})
	r.Register(&Command{
		Name:        "projects",
		Description: "List projects, or create one with -title",
		Usage:       "defectctl projects [-title <title> [-desc <description>]]",
		Run:         runProjects,
	})
	r.Register(&Command{
		Name:        "defects",
		Description: "List defects, or show one with -id",
		Usage:       "defectctl defects [-id <id>]",
		Run:         runDefects,
	})
	r.Register(&Command{
		Name:        "users",
		Description: "List users, or change a role with -id and -role",
		Usage:       "defectctl users [-skip N] [-limit N] [-id <id> -role <role>]",
		Run:         runUsers,
	})
	r.Register(&Command{
		Name:        "reports",
		Description: "Show an analytics report",
		Usage:       "defectctl reports -kind summary|status|priority|trend|performance [-days N]",
		Run:         runReports,
	})
	r.Register(&Command{
		Name:        "export",
		Description: "Download the defect export",
		Usage:       "defectctl export [-format csv|xlsx] [-o <file>]",
		Run:         runExport,
	})
}

func runLogin(ctx context.Context, app *App, fs *flag.FlagSet, args []string) error {
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("both -u and -p are required")
	}

	if err := app.Session.Login(ctx, *username, *password); err != nil {
		return err
	}
	user := app.Session.User()
	fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Role)
	return nil
}

func runLogout(ctx context.Context, app *App, _ *flag.FlagSet, _ []string) error {
	app.Session.Logout(ctx)
	fmt.Println("Logged out")
	return nil
}

func runWhoami(ctx context.Context, app *App, _ *flag.FlagSet, _ []string) error {
	if err := requireSession(ctx, app); err != nil {
		return err
	}
	return printJSON(app.Session.User())
}

func runRegister(ctx context.Context, app *App, fs *flag.FlagSet, args []string) error {
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := app.Session.Register(ctx, client.UserCreate{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s — you can now log in\n", *username)
	return nil
}

func runProjects(ctx context.Context, app *App, fs *flag.FlagSet, args []string) error {
	title := fs.String("title", "", "create a project with this title")
	desc := fs.String("desc", "", "project description (with -title)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(ctx, app); err != nil {
		return err
	}

	if *title != "" {
		project, err := app.API.Projects.Create(ctx, "", client.ProjectCreate{Title: *title, Description: *desc})
		if err != nil {
			return err
		}
		return printJSON(project)
	}

	projects, err := app.API.Projects.List(ctx, "")
	if err != nil {
		return err
	}
	return printJSON(projects)
}

func runDefects(ctx context.Context, app *App, fs *flag.FlagSet, args []string) error {
	id := fs.Int("id", 0, "show a single defect with its comments")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(ctx, app); err != nil {
		return err
	}

	if *id > 0 {
		defect, err := app.API.Defects.Get(ctx, "", *id)
		if err != nil {
			return err
		}
		comments, err := app.API.Defects.Comments(ctx, "", *id)
		if err != nil {
			return err
		}
		return printJSON(struct {
			Defect   *client.Defect   `json:"defect"`
			Comments []client.Comment `json:"comments"`
		}{defect, comments})
	}

	defects, err := app.API.Defects.List(ctx, "")
	if err != nil {
		return err
	}
	return printJSON(defects)
}

func runUsers(ctx context.Context, app *App, fs *flag.FlagSet, args []string) error {
	skip := fs.Int("skip", 0, "pagination offset")
	limit := fs.Int("limit", 0, "pagination page size")
	id := fs.Int("id", 0, "user to change the role of")
	role := fs.String("role", "", "new role: manager, engineer or observer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(ctx, app); err != nil {
		return err
	}

	if *id > 0 || *role != "" {
		if *id <= 0 || *role == "" {
			return fmt.Errorf("both -id and -role are required to change a role")
		}
		user, err := app.API.Auth.UpdateUserRole(ctx, "", *id, *role)
		if err != nil {
			return err
		}
		return printJSON(user)
	}

	users, err := app.API.Auth.Users(ctx, "", &client.ListUsersOptions{Skip: *skip, Limit: *limit})
	if err != nil {
		return err
	}
	return printJSON(users)
}

func runReports(ctx context.Context, app *App, fs *flag.FlagSet, args []string) error {
	kind := fs.String("kind", "summary", "summary, status, priority, trend or performance")
	days := fs.Int("days", 30, "trailing window for -kind trend")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(ctx, app); err != nil {
		return err
	}

	switch strings.ToLower(*kind) {
	case "summary":
		summary, err := app.API.Reports.Summary(ctx, "", nil)
		if err != nil {
			return err
		}
		return printJSON(summary)
	case "status":
		dist, err := app.API.Reports.StatusDistribution(ctx, "", nil)
		if err != nil {
			return err
		}
		return printJSON(dist)
	case "priority":
		dist, err := app.API.Reports.PriorityDistribution(ctx, "", nil)
		if err != nil {
			return err
		}
		return printJSON(dist)
	case "trend":
		trend, err := app.API.Reports.CreationTrend(ctx, "", *days)
		if err != nil {
			return err
		}
		return printJSON(trend)
	case "performance":
		perf, err := app.API.Reports.ProjectPerformance(ctx, "", nil)
		if err != nil {
			return err
		}
		return printJSON(perf)
	default:
		return fmt.Errorf("unknown report kind %q", *kind)
	}
}

func runExport(ctx context.Context, app *App, fs *flag.FlagSet, args []string) error {
	format := fs.String("format", client.ExportCSV, "csv or xlsx")
	out := fs.String("o", "", "output file (defaults to defects.<format>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(ctx, app); err != nil {
		return err
	}

	blob, err := app.API.Reports.Export(ctx, "", *format)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = "defects." + *format
	}
	if err := os.WriteFile(filepath.Clean(path), blob, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(blob), path)
	return nil
}
