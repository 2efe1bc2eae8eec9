package app

import "context"

// @provider named="database.connection" scope=transient
// DatabaseConnection provides database connectivity
func NewDatabaseConnection(
	ctx context.Context,
	config *Config, // @inject named="app.config" source=parent
	logger Logger, // @inject named="logger" optional=true
	first, second string,
) (*DatabaseConnection, error) {
	return &DatabaseConnection{}, nil
}

type DatabaseConnection struct{}
type Config struct{}
type Logger interface{}
