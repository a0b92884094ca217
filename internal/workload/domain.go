package workload

import (
	"github.com/Sumatoshi-tech/ivtree/pkg/alg/interval"
	"github.com/Sumatoshi-tech/ivtree/pkg/config"
)

// Domain binds a domain name to the parser for its interval type.
type Domain[I interval.Value[I]] struct {
	Name  string
	Parse func(text string) (I, error)
}

// Supported domains.
var (
	Int64 = Domain[interval.L]{Name: config.DomainInt64, Parse: interval.ParseL}
	Big   = Domain[interval.B]{Name: config.DomainBig, Parse: interval.ParseB}
	Float = Domain[interval.D]{Name: config.DomainFloat, Parse: interval.ParseD}
)
