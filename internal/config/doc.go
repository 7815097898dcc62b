// Package config provides configuration management for the collection
// generator.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - Validation before a run starts
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// 1000 items, 1-10 albums per artist, 1-24 songs per album,
//	// names of 3-16 characters
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/collection.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Validation
//
//	if err := settings.Validate(); err != nil {
//	    // errors.Is(err, config.ErrInvalidSettings)
//	}
package config
