package mvc_test

import (
	"context"
	"fmt"

	"github.com/aretw0/humdrum/pkg/mvc"
)

type page struct {
	Title string
}

func Example() {
	type C = mvc.Controller[*request, *page]

	login := mvc.ViewFunc[*request, *page](func(ctx context.Context, _ *C, req *request, p *page) error {
		fmt.Println("please log in")
		return nil
	})
	home := mvc.ViewFunc[*request, *page](func(ctx context.Context, _ *C, req *request, p *page) error {
		fmt.Println("welcome,", p.Title)
		return nil
	})

	c := mvc.NewController[*request, *page]()
	c.AddProcess(mvc.ProcessFunc[*request, *page](func(ctx context.Context, _ *C, req *request, p *page) (string, error) {
		if req.User == "" {
			return "login", nil
		}
		p.Title = req.User
		return "", nil
	}))
	c.AddView("login", login)
	c.SetDefaultView(home)

	_ = c.HandleRequest(context.Background(), &request{}, &page{})
	_ = c.HandleRequest(context.Background(), &request{User: "ada"}, &page{})
	// Output:
	// please log in
	// welcome, ada
}
