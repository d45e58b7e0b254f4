package main

// Route describes one navigable destination and its access requirements.
type Route struct {
	Name          string
	Path          string
	RequiresAuth  bool
	RequiresAdmin bool
}

// Route names referenced by the gate itself.
const (
	RouteHome  = "Home"
	RouteLogin = "Login"
)

// DefaultRoutes is the application route table. Admin destinations carry
// both flags: an admin area is never reachable unauthenticated.
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteHome, Path: "/"},
		{Name: "Books", Path: "/books"},
		{Name: "BookDetail", Path: "/books/:id"},
		{Name: "MyBooks", Path: "/my-books", RequiresAuth: true},
		{Name: "Admin", Path: "/admin", RequiresAuth: true, RequiresAdmin: true},
		{Name: "AdminBooks", Path: "/admin/books", RequiresAuth: true, RequiresAdmin: true},
		{Name: "EditBook", Path: "/admin/books/edit/:id", RequiresAuth: true, RequiresAdmin: true},
		{Name: "AddBook", Path: "/admin/books/add", RequiresAuth: true, RequiresAdmin: true},
		{Name: "AdminUsers", Path: "/admin/users", RequiresAuth: true, RequiresAdmin: true},
		{Name: "AdminBorrowings", Path: "/admin/borrowings", RequiresAuth: true, RequiresAdmin: true},
		{Name: RouteLogin, Path: "/login"},
	}
}
