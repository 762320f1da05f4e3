package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clax-app/clax-client/internal/apiclient"
	"github.com/clax-app/clax-client/internal/expirystore"
	"github.com/clax-app/clax-client/internal/models"
	"github.com/clax-app/clax-client/internal/tokenrefresher"
)

const usage = `Usage: clax <command> [arguments]

Commands:
  register <username> <password>    create a new account
  login <username> <password>       authenticate and persist token expiries
  whoami                            show the authenticated user
  run                               keep the token renewal timers running
  tasks list                        list all tasks
  tasks add <title>                 create a task
  tasks toggle <id>                 flip a task's completion state
  tasks rm <id>                     delete a task
  confirm-password <password>       re-confirm the password
  update-username <username>        change the username
  update-password <password>        change the password
  logout [--all-other-sessions]     end the current or all other sessions
  delete-account                    permanently delete the account
`

func (app *application) dispatch(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	ctx := context.Background()
	switch args[0] {
	case "register":
		return app.register(ctx, args[1:])
	case "login":
		return app.login(ctx, args[1:])
	case "whoami":
		return app.whoami(ctx)
	case "run":
		return app.run(ctx)
	case "tasks":
		return app.tasks(ctx, args[1:])
	case "confirm-password":
		return app.confirmPassword(ctx, args[1:])
	case "update-username":
		return app.updateUsername(ctx, args[1:])
	case "update-password":
		return app.updatePassword(ctx, args[1:])
	case "logout":
		return app.logout(ctx, args[1:])
	case "delete-account":
		return app.deleteAccount(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

func printErrors(errs []string) int {
	for _, message := range errs {
		fmt.Fprintln(os.Stderr, "error:", message)
	}
	return 1
}

func (app *application) register(ctx context.Context, args []string) int {
	if len(args) != 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	if errs := apiclient.DoErr(ctx, func(ctx context.Context) error {
		return app.api.Register(ctx, args[0], args[1])
	}); errs != nil {
		return printErrors(errs)
	}
	fmt.Println("account created, you can log in now")
	return 0
}

func (app *application) login(ctx context.Context, args []string) int {
	if len(args) != 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	outcome := apiclient.Do(ctx, func(ctx context.Context) (models.TokenSet, error) {
		return app.api.Login(ctx, args[0], args[1])
	})
	if outcome.Result == nil {
		return printErrors(outcome.Errors)
	}
	if err := expirystore.SaveTokenSet(ctx, app.store, *outcome.Result); err != nil {
		return printErrors([]string{err.Error()})
	}
	fmt.Println("logged in")
	return 0
}

func (app *application) whoami(ctx context.Context) int {
	outcome := apiclient.Do(ctx, app.api.CurrentUser)
	if outcome.Result == nil {
		return printErrors(outcome.Errors)
	}
	fmt.Printf("%s (%s)\n", outcome.Result.Username, outcome.Result.ID)
	return 0
}

// run bootstraps the session and then keeps the renewal timers alive until
// the process is interrupted.
func (app *application) run(ctx context.Context) int {
	if !app.sequencer.Run(ctx) {
		fmt.Fprintln(os.Stderr, "error: not authenticated, log in first")
		return 1
	}
	user, _ := app.state.User()
	fmt.Printf("session active for %s, renewing tokens in the background\n", user.Username)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	app.state.CancelAndClearTimers()
	return 0
}

func (app *application) tasks(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	switch args[0] {
	case "list":
		outcome := apiclient.Do(ctx, app.api.Tasks)
		if outcome.Result == nil {
			return printErrors(outcome.Errors)
		}
		for _, task := range *outcome.Result {
			marker := " "
			if task.IsComplete {
				marker = "x"
			}
			fmt.Printf("[%s] %s  %s\n", marker, task.ID, task.Title)
		}
		return 0
	case "add":
		if len(args) != 2 {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		outcome := apiclient.Do(ctx, func(ctx context.Context) (models.Task, error) {
			return app.api.CreateTask(ctx, args[1])
		})
		if outcome.Result == nil {
			return printErrors(outcome.Errors)
		}
		fmt.Println("created task", outcome.Result.ID)
		return 0
	case "toggle":
		if len(args) != 2 {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		return app.toggleTask(ctx, args[1])
	case "rm":
		if len(args) != 2 {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		if errs := apiclient.DoErr(ctx, func(ctx context.Context) error {
			return app.api.DeleteTask(ctx, args[1])
		}); errs != nil {
			return printErrors(errs)
		}
		fmt.Println("deleted task", args[1])
		return 0
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
}

func (app *application) toggleTask(ctx context.Context, id string) int {
	outcome := apiclient.Do(ctx, app.api.Tasks)
	if outcome.Result == nil {
		return printErrors(outcome.Errors)
	}
	for _, task := range *outcome.Result {
		if task.ID != id {
			continue
		}
		isComplete := !task.IsComplete
		if errs := apiclient.DoErr(ctx, func(ctx context.Context) error {
			_, err := app.api.UpdateTask(ctx, id, apiclient.TaskUpdate{IsComplete: &isComplete})
			return err
		}); errs != nil {
			return printErrors(errs)
		}
		fmt.Println("updated task", id)
		return 0
	}
	return printErrors([]string{fmt.Sprintf("no task with id %q", id)})
}

func (app *application) confirmPassword(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	outcome := apiclient.Do(ctx, func(ctx context.Context) (models.ExpiringCredential, error) {
		return app.api.ConfirmPassword(ctx, args[0])
	})
	if outcome.Result == nil {
		return printErrors(outcome.Errors)
	}
	expiresAt := outcome.Result.ExpiryTime()
	if err := app.store.SetExpiry(ctx, models.PasswordConfirmationToken, expiresAt); err != nil {
		return printErrors([]string{err.Error()})
	}
	fmt.Println("password confirmed until", expiresAt.Format(time.RFC3339))
	return 0
}

// requireFreshConfirmation gates sensitive actions the way the UI disables
// its buttons when the password confirmation has gone stale.
func (app *application) requireFreshConfirmation(ctx context.Context) bool {
	if tokenrefresher.PasswordConfirmationFresh(ctx, app.store, time.Now()) {
		return true
	}
	fmt.Fprintln(os.Stderr, "error: confirm your password first (clax confirm-password)")
	return false
}

func (app *application) updateUsername(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	if !app.requireFreshConfirmation(ctx) {
		return 1
	}
	if errs := apiclient.DoErr(ctx, func(ctx context.Context) error {
		_, err := app.api.UpdateUsername(ctx, args[0])
		return err
	}); errs != nil {
		return printErrors(errs)
	}
	fmt.Println("username updated")
	return 0
}

func (app *application) updatePassword(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	if !app.requireFreshConfirmation(ctx) {
		return 1
	}
	if errs := apiclient.DoErr(ctx, func(ctx context.Context) error {
		return app.api.UpdatePassword(ctx, args[0])
	}); errs != nil {
		return printErrors(errs)
	}
	fmt.Println("password updated")
	return 0
}

func (app *application) logout(ctx context.Context, args []string) int {
	allOtherSessions := len(args) == 1 && args[0] == "--all-other-sessions"
	if allOtherSessions && !app.requireFreshConfirmation(ctx) {
		return 1
	}
	if errs := app.sequencer.Logout(ctx, allOtherSessions); errs != nil {
		return printErrors(errs)
	}
	if allOtherSessions {
		fmt.Println("logged out of all other sessions")
	} else {
		fmt.Println("logged out")
	}
	return 0
}

func (app *application) deleteAccount(ctx context.Context) int {
	if !app.requireFreshConfirmation(ctx) {
		return 1
	}
	if errs := app.sequencer.DeleteAccount(ctx); errs != nil {
		return printErrors(errs)
	}
	fmt.Println("account deleted")
	return 0
}
