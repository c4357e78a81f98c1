/*
Package domain contains the concrete request and model types used by Humdrum
applications.

The mvc core is generic over its request and model types. Applications built
with the site loader, the session manager and the bundled adapters all share
the types defined here, so that processes and views written once work behind
HTTP, MCP and the CLI alike.

# Key Entities

  - Request: input parameters of one dispatch cycle plus the output sink.
  - Model: the mutable, per-session domain state threaded through the cycle.
  - Controller, Process, View: the mvc types instantiated for Request and Model.
*/
package domain
