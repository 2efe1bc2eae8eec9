package services

//go:generate go run github.com/a-peyrard/treedi/cmd/generator
