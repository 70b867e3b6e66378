package router

const (
	PathRoot     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathMain     = "/main"
	PathNewTask  = "/tasks/new"
)

// Route is one entry in the route table.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
	Redirect     string // static redirect target, resolved before guards run
}

// DefaultRoutes is the client's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: PathRoot, Name: "root", Redirect: PathMain},
		{Path: PathLogin, Name: "login"},
		{Path: PathRegister, Name: "register"},
		{Path: PathMain, Name: "main", RequiresAuth: true},
		{Path: PathNewTask, Name: "new-task", RequiresAuth: true},
	}
}
