package metrics

import (
	"github.com/AdRoll/fastx"
	"github.com/AdRoll/fastx/metrics/datadog"
)

// All is the list of all metrics clients supported by fastx.
var All = []fastx.MetricsDesc{
	datadog.Desc,
}
