package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// The console is the thin UI surface of the client: every destination goes
// through the access gate and every mutation through the stores. Rendering
// stays minimal on purpose.

// Console returns the interactive loop. It stops the whole application
// when the user exits or stdin closes.
func (app *App) Console(ctx context.Context, stop func()) func() error {
	return func() error {
		defer stop()
		sc := bufio.NewScanner(os.Stdin)
		fmt.Println("Book store console. Type 'help' for commands.")
		for {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Print("> ")
			if !sc.Scan() {
				return sc.Err()
			}
			fields := strings.Fields(strings.TrimSpace(sc.Text()))
			if len(fields) == 0 {
				continue
			}
			cmd, args := fields[0], fields[1:]
			switch cmd {
			case "help":
				printConsoleHelp()
			case "exit":
				fmt.Println("Goodbye!")
				return nil
			case "go":
				if len(args) == 1 {
					app.navigate(ctx, sc, args[0])
				} else {
					fmt.Println("usage: go <path>")
				}
			case "login":
				app.promptLogin(ctx, sc)
			case "logout":
				app.identity.Logout()
				fmt.Println("Logged out.")
			case "whoami":
				if sess, ok := app.identity.Current(); ok {
					fmt.Printf("%s (%s, role %s)\n", sess.Name, sess.Username, sess.Role)
				} else {
					fmt.Println("Not logged in.")
				}
			case "search":
				app.catalog.SetSearchQuery(strings.Join(args, " "))
				app.navigate(ctx, sc, "/books")
			case "category":
				app.catalog.SetCategoryFilter(strings.Join(args, " "))
				app.navigate(ctx, sc, "/books")
			case "categories":
				fmt.Println(strings.Join(app.catalog.Categories(), ", "))
			case "borrow":
				app.withBookID(args, func(id int) {
					<-app.catalog.BorrowBook(ctx, id)
					app.printBook(id)
				})
			case "return":
				app.withBookID(args, func(id int) {
					<-app.catalog.ReturnBook(ctx, id)
					app.printBook(id)
				})
			case "add":
				app.promptAddBook(ctx, sc)
			case "delete":
				app.withBookID(args, func(id int) {
					if app.gateAllows(ctx, sc, "/admin/books") {
						<-app.catalog.DeleteBook(ctx, id)
						fmt.Printf("Catalog now holds %d books.\n", len(app.catalog.Books()))
					}
				})
			case "quantity":
				if len(args) == 2 {
					app.updateQuantity(ctx, sc, args[0], args[1])
				} else {
					fmt.Println("usage: quantity <book-id> <count>")
				}
			case "theme":
				app.theme.ToggleDark()
				fmt.Printf("Theme: %+v\n", app.theme.Prefs())
			default:
				fmt.Println("Unknown command. Type 'help' for commands.")
			}
		}
	}
}

func printConsoleHelp() {
	fmt.Println("Navigation: go <path> (/, /books, /books/<id>, /my-books, /admin, /admin/books, /admin/borrowings, /login)")
	fmt.Println("Session:    login, logout, whoami")
	fmt.Println("Catalog:    search <text>, category <name>, categories, borrow <id>, return <id>")
	fmt.Println("Admin:      add, delete <id>, quantity <id> <count>")
	fmt.Println("Misc:       theme, exit")
}

// navigate resolves the path through the gate and renders the reached view.
func (app *App) navigate(ctx context.Context, sc *bufio.Scanner, path string) {
	d := app.navigator.Resolve(path)
	switch d.Outcome {
	case OutcomeNotFound:
		fmt.Printf("No such destination: %s\n", path)
	case OutcomeLoginRedirect:
		fmt.Printf("Login required for %s.\n", d.Redirect)
		if app.promptLogin(ctx, sc) {
			// resume the originally intended destination.
			app.navigate(ctx, sc, d.Redirect)
		}
	case OutcomeHomeRedirect:
		fmt.Println("Admin access required. Back to home.")
		app.render(Decision{Outcome: OutcomeAllow, Route: d.Route})
	default:
		app.render(d)
	}
}

// gateAllows resolves the path and reports whether the caller may proceed,
// prompting for login on a redirect.
func (app *App) gateAllows(ctx context.Context, sc *bufio.Scanner, path string) bool {
	d := app.navigator.Resolve(path)
	switch d.Outcome {
	case OutcomeAllow:
		return true
	case OutcomeLoginRedirect:
		fmt.Printf("Login required for %s.\n", d.Redirect)
		if app.promptLogin(ctx, sc) {
			return app.navigator.Resolve(path).Outcome == OutcomeAllow
		}
		return false
	default:
		fmt.Println("Not allowed.")
		return false
	}
}

func (app *App) render(d Decision) {
	if d.Route == nil {
		return
	}
	switch d.Route.Name {
	case RouteHome:
		fmt.Printf("Welcome to the book store. %d books in catalog.\n", len(app.catalog.Books()))
	case "Books":
		for _, b := range app.catalog.FilteredBooks() {
			fmt.Printf("#%d %q by %s [%s] available=%v (%d/%d)\n",
				b.ID, b.Title, b.Author, b.Category, b.Available, len(b.BorrowedBy), b.Quantity)
		}
	case "BookDetail":
		if id, err := strconv.Atoi(d.Params.ByName("id")); err == nil {
			app.printBook(id)
		}
	case "MyBooks":
		if sess, ok := app.identity.Current(); ok {
			for _, r := range app.catalog.GetUserBorrowings(sess.ID) {
				fmt.Printf("record #%d book #%d since %s status=%s\n", r.ID, r.BookID, r.BorrowDate, r.Status)
			}
		}
	case "Admin", "AdminBooks":
		for _, b := range app.catalog.Books() {
			fmt.Printf("#%d %q quantity=%d borrowedBy=%v\n", b.ID, b.Title, b.Quantity, b.BorrowedBy)
		}
	case "AdminBorrowings":
		for _, r := range app.catalog.Borrowings() {
			fmt.Printf("record #%d user #%d book #%d %s status=%s\n", r.ID, r.UserID, r.BookID, r.BorrowDate, r.Status)
		}
	case "AdminUsers":
		for _, u := range SeedUsers() {
			fmt.Printf("#%d %s <%s> role=%s\n", u.ID, u.Name, u.Email, u.Role)
		}
	case RouteLogin:
		fmt.Println("Use the 'login' command.")
	}
}

func (app *App) printBook(id int) {
	if b, ok := app.catalog.GetBookByID(id); ok {
		fmt.Printf("#%d %q by %s available=%v (%d/%d copies out)\n",
			b.ID, b.Title, b.Author, b.Available, len(b.BorrowedBy), b.Quantity)
	} else {
		fmt.Printf("Book %d not found.\n", id)
	}
}

// promptLogin reads credentials and resolves the asynchronous login,
// reporting whether a session was established.
func (app *App) promptLogin(ctx context.Context, sc *bufio.Scanner) bool {
	fmt.Print("Username: ")
	if !sc.Scan() {
		return false
	}
	username := strings.TrimSpace(sc.Text())
	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Println("Could not read password.")
		return false
	}
	<-app.identity.Login(ctx, username, password)
	if msg := app.identity.Error(); msg != "" {
		fmt.Println(msg)
		return false
	}
	sess, _ := app.identity.Current()
	fmt.Printf("Welcome back, %s.\n", sess.Name)
	return true
}

func (app *App) promptAddBook(ctx context.Context, sc *bufio.Scanner) {
	if !app.gateAllows(ctx, sc, "/admin/books/add") {
		return
	}
	draft := BookDraft{}
	fmt.Print("Title: ")
	if !sc.Scan() {
		return
	}
	draft.Title = strings.TrimSpace(sc.Text())
	fmt.Print("Author: ")
	if !sc.Scan() {
		return
	}
	draft.Author = strings.TrimSpace(sc.Text())
	fmt.Print("Category: ")
	if !sc.Scan() {
		return
	}
	draft.Category = strings.TrimSpace(sc.Text())
	fmt.Print("Quantity: ")
	if !sc.Scan() {
		return
	}
	q, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil || q < 0 {
		fmt.Println("Quantity must be a non-negative number.")
		return
	}
	draft.Quantity = q
	<-app.catalog.AddBook(ctx, draft)
	fmt.Printf("Catalog now holds %d books.\n", len(app.catalog.Books()))
}

func (app *App) updateQuantity(ctx context.Context, sc *bufio.Scanner, rawID, rawCount string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		fmt.Println("Book id must be a number.")
		return
	}
	count, err := strconv.Atoi(rawCount)
	if err != nil || count < 0 {
		fmt.Println("Quantity must be a non-negative number.")
		return
	}
	if !app.gateAllows(ctx, sc, fmt.Sprintf("/admin/books/edit/%d", id)) {
		return
	}
	<-app.catalog.UpdateBook(ctx, id, BookPatch{Quantity: &count})
	app.printBook(id)
}

func (app *App) withBookID(args []string, fn func(id int)) {
	if len(args) != 1 {
		fmt.Println("usage: <command> <book-id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Book id must be a number.")
		return
	}
	fn(id)
}

// readPassword reads a password with terminal echo disabled.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(raw)), nil
}
