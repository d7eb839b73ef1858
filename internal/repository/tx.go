package repository

import "context"

// Repositories groups the repositories that share one transaction.
type Repositories struct {
	Drivers     DriverRepository
	Vehicles    VehicleRepository
	Assignments AssignmentRepository
	Duties      DutyRepository
}

// Transactor runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithTx(ctx context.Context, fn func(Repositories) error) error
}
