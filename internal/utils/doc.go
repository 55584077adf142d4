// Package utils exposes reusable helpers consumed by the release command.
//
// It houses the Viper backed ConfigurationLoader and the zap LoggerFactory.
package utils
