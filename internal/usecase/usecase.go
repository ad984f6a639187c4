// Package usecase implements the application's business rules on top of the
// repository layer. Each usecase is an interface with a single constructor so
// handlers depend on behavior rather than storage details.
package usecase
