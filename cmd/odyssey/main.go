// Command odyssey runs the Organizational Odyssey API and its maintenance tasks.
//
//	@title						Organizational Odyssey API
//	@version					1.0
//	@description				Employer hierarchy tracking with account management and an admin surface.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the session token.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
