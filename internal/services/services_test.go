package services

import (
	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

// Shared fixtures. The metrics collector registers against the global
// prometheus registry, so the package gets exactly one.
var (
	testLogger  = logging.NewStructuredLogger("services-test", "0.0.0", logging.ErrorLevel)
	testMetrics = metrics.NewCollector("regatta_services_test")
)
