/*
Package views provides the concrete views bundled with Humdrum.

Every view writes to the request's Out writer. Text and Markdown bodies may
reference model values as ${key} and request parameters as ${param.key};
there is no other templating.
*/
package views
