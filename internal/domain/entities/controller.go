package entities

import "github.com/spf13/cobra"

// ControllerBind carries the Cobra metadata for one subcommand.
type ControllerBind struct {
	Use   string
	Short string
	Long  string
}

// Controller is the contract every subcommand controller implements.
type Controller interface {
	GetBind() ControllerBind
	AddFlags(cmd *cobra.Command)
	Execute(cmd *cobra.Command, args []string)
}
