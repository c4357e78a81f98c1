// Package processes provides the built-in processes available to site
// definitions, and the helpers to register them.
package processes
