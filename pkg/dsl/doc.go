/*
Package dsl builds humdrum sites in Go instead of YAML.

The builder produces the same site.Definition a site file parses to, so
everything that works on definitions (validation, graphs, the MCP site
resource) works on built sites too.

	b := dsl.New()
	b.Controller("main").
		Process("require_param", dsl.Args{"param": "name", "view": "ask"}).
		View("ask", site.TypeText, dsl.Args{"body": "who are you?"}).
		Forward("greet", "hello").
		Default(site.TypeStatus, dsl.Args{"code": 404})
	b.Controller("hello").
		Default(site.TypeText, dsl.Args{"body": "hello ${param.name}"})

	s, err := b.Build(processes.NewRegistry())
*/
package dsl
