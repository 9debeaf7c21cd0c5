package ports

import "context"

// Route names a destination of the presentation shell.
type Route string

const (
	RouteHome  Route = "/"
	RouteLogin Route = "/login"
	RouteAsk   Route = "/ask"
)

// QuestionRoute is the detail route of a question.
func QuestionRoute(id string) Route {
	return Route("/question/" + id)
}

// Shell is the presentation layer as seen by the core: it shows messages,
// changes route and asks the user to confirm irreversible actions.
type Shell interface {
	Notify(msg string)
	Navigate(route Route)
	Confirm(ctx context.Context, prompt string) (bool, error)
}
