package hello

import (
	"fmt"
	"net/http"

	"github.com/a-peyrard/treedi"
	"github.com/a-peyrard/treedi/playground/app/config"
	"github.com/a-peyrard/treedi/playground/app/server"
	"github.com/go-chi/chi/v5"
)

// Greeter greets the caller of one request.
type Greeter struct {
	greeting string
	request  *http.Request
}

// NewGreeter is how request scopes build a Greeter, the request being bound in the scope only.
//
// @constructor
func NewGreeter(
	cfg *config.Config,
	request *http.Request, // @inject source=local
) *Greeter {
	return &Greeter{greeting: cfg.Hello.Greeting, request: request}
}

func (g *Greeter) Greet() string {
	name := chi.URLParam(g.request, "name")
	if name == "" {
		name = "world"
	}
	return fmt.Sprintf("%s %s", g.greeting, name)
}

// NewHelloRoute greets the name given in the path.
//
// @provider named="hello.route"
func NewHelloRoute() *server.Route {
	return &server.Route{
		Method:  http.MethodGet,
		Pattern: "/hello/{name}",
		Handle: func(scope *treedi.Container, w http.ResponseWriter, _ *http.Request) error {
			greeter, err := treedi.Instantiate[*Greeter](scope)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, greeter.Greet())
			return err
		},
	}
}
