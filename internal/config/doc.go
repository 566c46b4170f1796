// Package config manages user-level settings stored at
// ~/.create-react-cs/config.yaml. It resolves the default template, the list of
// templates a user may pick from, the registry base URL and the package
// manager binary, with environment variables overriding the file.
package config
