/*
Package domain contains the shared models of the vali engine that are not
part of a scheme declaration.

It is kept free of I/O and persistence, so adapters (HTTP, MCP, CLI) can
exchange these values without depending on each other.

# Key Entities

  - ValidationEvent: Emitted before and after the engine validates data.
  - SchemeEvent: Emitted when a named scheme is loaded, replaced or removed.
  - Change: One difference between the input and the normalized output.
*/
package domain
