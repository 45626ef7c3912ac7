// Package cli provides the command-line interface for scout.
package cli

import "github.com/marketlens/scout/internal/app"

// Global reference, set by the root command's PersistentPreRunE.
var globalApp *app.Application

// SetApp stores the Application for commands to access.
func SetApp(a *app.Application) { globalApp = a }

// GetApp retrieves the current Application.
func GetApp() *app.Application { return globalApp }
