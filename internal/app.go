package internal

import (
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// AppInternal is the assembled application: the controller set the CLI
// exposes as subcommands.
type AppInternal struct {
	controllers *[]entities.Controller
}

// NewAppInternal creates the application from the aggregated controllers.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: controllers}
}

// GetControllers returns every registered controller.
func (it *AppInternal) GetControllers() []entities.Controller {
	return *it.controllers
}
