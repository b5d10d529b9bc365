// Package routes registers every huma operation of the public API.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/NullSpells/NomadSquare/internal/http/v1/hello"
)

// Register wires all API operations into api.
func Register(api huma.API) {
	hello.Register(api)
}
