package interfaces

// -----------------------------------------------------------------------------
// IHealthReporter receives component health changes (gRPC health service).
// -----------------------------------------------------------------------------

type IHealthReporter interface {
	SetServing(service string, serving bool)
}
