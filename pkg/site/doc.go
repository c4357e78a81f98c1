/*
Package site turns a declarative site definition into wired controllers.

A site file names controllers. Each controller lists its processes in dispatch
order, its named views and an optional default view:

	entry: main
	controllers:
	  main:
	    processes:
	      - name: require_session
	        args: {key: user, view: login}
	      - count_visit
	    views:
	      login: {type: forward, target: auth}
	    default: {type: markdown, body: "# Welcome back, ${user}"}
	  auth:
	    processes:
	      - name: copy_param
	        args: {param: user}
	      - name: require_session
	        args: {key: user, view: ask}
	    views:
	      ask: {type: text, body: "who are you?"}
	    default: {type: redirect, location: /c/main}

Processes are resolved by name through a registry.Registry. A bare string is
shorthand for a process without arguments. Forward targets may name any
controller of the site, including one that forwards back.
*/
package site
