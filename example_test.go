package humdrum_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/humdrum"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/site"
)

func ExampleNew() {
	def, err := site.Parse([]byte(`
controllers:
  main:
    processes:
      - {name: require_param, args: {param: name, view: ask}}
    views:
      ask: {type: text, body: "Who are you?\n"}
    default: {type: text, body: "Hello, ${param.name}!\n"}
`))
	if err != nil {
		log.Fatal(err)
	}

	app, err := humdrum.New(def)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	for _, name := range []string{"", "Ada"} {
		req := domain.NewRequest(domain.SourceCLI, os.Stdout)
		if name != "" {
			req.Set("name", name)
		}
		if _, err := app.Dispatch(ctx, "main", "example", req); err != nil {
			fmt.Println("error:", err)
		}
	}

	// Output:
	// Who are you?
	// Hello, Ada!
}
