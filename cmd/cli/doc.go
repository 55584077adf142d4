// Package cli constructs the podrelease command-line interface, wiring the
// Cobra root command, the Viper backed configuration loader, zap logging, and
// the release service with its git, CocoaPods, editor, and browser
// collaborators.
package cli
